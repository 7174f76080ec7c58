package enroll

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/maciespectre/internal/awsenv"
	"github.com/ppiankov/maciespectre/internal/dispatch"
	"github.com/ppiankov/maciespectre/internal/macie"
)

type stubEnroller struct {
	region      string
	members     []macie.Member
	autoEnabled bool
	failFor     map[string]error

	created  []string
	autoSet  bool
	exported *macie.ExportDestination
}

func (s *stubEnroller) Region() string { return s.region }

func (s *stubEnroller) ListMembers(context.Context) ([]macie.Member, error) {
	return s.members, nil
}

func (s *stubEnroller) CreateMember(_ context.Context, accountID, _ string) (string, error) {
	if err := s.failFor[accountID]; err != nil {
		return "", err
	}
	s.created = append(s.created, accountID)
	s.members = append(s.members, macie.Member{AccountID: accountID, RelationshipStatus: macie.RelationshipEnabled})
	return "arn:aws:macie2:" + s.region + ":self:member/" + accountID, nil
}

func (s *stubEnroller) AutoEnabled(context.Context) (bool, error) { return s.autoEnabled, nil }

func (s *stubEnroller) SetAutoEnable(_ context.Context, enabled bool) error {
	s.autoSet = enabled
	s.autoEnabled = enabled
	return nil
}

func (s *stubEnroller) PutExportConfiguration(_ context.Context, dest macie.ExportDestination) error {
	s.exported = &dest
	return nil
}

func ids(accounts []awsenv.Account) []string {
	out := make([]string, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.ID)
	}
	return out
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestComputeEnableList_Scenario(t *testing.T) {
	roster := []awsenv.Account{
		{ID: "A", Email: "a@example.com", Status: "ACTIVE"},
		{ID: "B", Email: "b@example.com", Status: "SUSPENDED"},
		{ID: "self", Email: "admin@example.com", Status: "ACTIVE"},
	}

	got := ComputeEnableList(roster, map[string]struct{}{}, "self")
	if !reflect.DeepEqual(ids(got), []string{"A"}) {
		t.Fatalf("expected [A], got %v", ids(got))
	}
}

func TestComputeEnableList_PreservesOrderAndSkipsMembers(t *testing.T) {
	roster := []awsenv.Account{
		{ID: "3", Status: "ACTIVE"},
		{ID: "1", Status: "ACTIVE"},
		{ID: "2", Status: "ACTIVE"},
		{ID: "4", Status: "PENDING_CLOSURE"},
	}
	current := map[string]struct{}{"1": {}}

	got := ComputeEnableList(roster, current, "")
	if !reflect.DeepEqual(ids(got), []string{"3", "2"}) {
		t.Fatalf("expected [3 2], got %v", ids(got))
	}
}

func TestComputeEnableList_NeverIncludesSelf(t *testing.T) {
	roster := []awsenv.Account{{ID: "self", Status: "ACTIVE"}}
	for _, current := range []map[string]struct{}{nil, {}, {"other": {}}} {
		if got := ComputeEnableList(roster, current, "self"); len(got) != 0 {
			t.Fatalf("self must never be enrolled, got %v", ids(got))
		}
	}
}

func TestEnabledMembers_WarnsOnOtherStatuses(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	current := EnabledMembers([]macie.Member{
		{AccountID: "1", RelationshipStatus: "Enabled"},
		{AccountID: "2", RelationshipStatus: "Paused"},
		{AccountID: "3", RelationshipStatus: "Invited"},
	}, logger)

	if len(current) != 1 {
		t.Fatalf("expected only enabled members, got %v", current)
	}
	if _, ok := current["1"]; !ok {
		t.Fatalf("expected account 1 in current set")
	}
	out := buf.String()
	if !strings.Contains(out, "account=2") || !strings.Contains(out, "status=Paused") || !strings.Contains(out, "account=3") {
		t.Fatalf("expected warnings for non-enabled members, got %q", out)
	}
}

func TestReconcileRegion_Idempotent(t *testing.T) {
	roster := []awsenv.Account{
		{ID: "A", Email: "a@example.com", Status: "ACTIVE"},
		{ID: "B", Email: "b@example.com", Status: "ACTIVE"},
		{ID: "self", Status: "ACTIVE"},
	}
	e := &stubEnroller{region: "us-east-1", autoEnabled: true}
	d := dispatch.New(true, quietLogger())
	opts := Options{SelfID: "self"}

	first, err := ReconcileRegion(context.Background(), e, roster, opts, d, quietLogger())
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if !reflect.DeepEqual(ids(first.ToEnroll), []string{"A", "B"}) {
		t.Fatalf("unexpected first delta %v", ids(first.ToEnroll))
	}

	second, err := ReconcileRegion(context.Background(), e, roster, opts, d, quietLogger())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(second.ToEnroll) != 0 {
		t.Fatalf("second run must be empty, got %v", ids(second.ToEnroll))
	}
	if len(e.created) != 2 {
		t.Fatalf("expected exactly two creations overall, got %v", e.created)
	}
}

func TestReconcileRegion_DryRun(t *testing.T) {
	roster := []awsenv.Account{{ID: "A", Email: "a@example.com", Status: "ACTIVE"}}
	e := &stubEnroller{region: "eu-west-1"}
	var logs bytes.Buffer
	d := dispatch.New(false, slog.New(slog.NewTextHandler(&logs, nil)))

	res, err := ReconcileRegion(context.Background(), e, roster,
		Options{SelfID: "self", ExportBucket: "exports", KMSKeyARN: "arn:aws:kms:eu-west-1:1:key/k"}, d, quietLogger())
	if err != nil {
		t.Fatalf("ReconcileRegion failed: %v", err)
	}
	if e.autoSet || e.exported != nil || len(e.created) != 0 {
		t.Fatalf("dry run must not mutate: auto=%v export=%v created=%v", e.autoSet, e.exported, e.created)
	}
	if len(res.Outcomes) != 3 {
		t.Fatalf("expected auto-enable, export and member intents, got %d", len(res.Outcomes))
	}
	for _, want := range []string{"Would auto-enable new accounts in eu-west-1", "s3://exports/eu-west-1/", "Would add account A"} {
		if !strings.Contains(logs.String(), want) {
			t.Fatalf("expected %q in logs, got %q", want, logs.String())
		}
	}
}

func TestReconcileRegion_CommitIsolatesFailures(t *testing.T) {
	roster := []awsenv.Account{
		{ID: "A", Status: "ACTIVE"},
		{ID: "B", Status: "ACTIVE"},
		{ID: "C", Status: "ACTIVE"},
	}
	boom := errors.New("ConflictException")
	e := &stubEnroller{region: "us-west-2", autoEnabled: true, failFor: map[string]error{"B": boom}}

	res, err := ReconcileRegion(context.Background(), e, roster,
		Options{ExportBucket: "exports", KMSKeyARN: "k"}, dispatch.New(true, quietLogger()), quietLogger())
	if err != nil {
		t.Fatalf("ReconcileRegion failed: %v", err)
	}
	if !reflect.DeepEqual(e.created, []string{"A", "C"}) {
		t.Fatalf("expected A and C to be created, got %v", e.created)
	}
	if e.exported == nil || e.exported.KeyPrefix != "us-west-2/" {
		t.Fatalf("expected export with region prefix, got %+v", e.exported)
	}
	if !errors.Is(res.Outcomes.Err(), boom) {
		t.Fatalf("expected failure to be reported, got %v", res.Outcomes.Err())
	}
	if !strings.Contains(res.Outcomes.Err().Error(), "account B") {
		t.Fatalf("expected account context, got %v", res.Outcomes.Err())
	}
}

func TestFilter(t *testing.T) {
	roster := []awsenv.Account{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	if got := Filter(roster, nil); len(got) != 3 {
		t.Fatalf("nil allow set must keep everything")
	}
	got := Filter(roster, map[string]struct{}{"3": {}, "1": {}})
	if !reflect.DeepEqual(ids(got), []string{"1", "3"}) {
		t.Fatalf("unexpected filter result %v", ids(got))
	}
}
