package enroll

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ppiankov/maciespectre/internal/awsenv"
	"github.com/ppiankov/maciespectre/internal/dispatch"
	"github.com/ppiankov/maciespectre/internal/macie"
)

// EnabledMembers returns the set of member account ids whose relationship
// is Enabled. Every other status is logged as a warning and left out, so
// those accounts are treated as not yet enrolled.
func EnabledMembers(members []macie.Member, logger *slog.Logger) map[string]struct{} {
	current := make(map[string]struct{}, len(members))
	for _, m := range members {
		if m.RelationshipStatus == macie.RelationshipEnabled {
			current[m.AccountID] = struct{}{}
			continue
		}
		if logger != nil {
			logger.Warn("Member account is not enabled",
				slog.String("account", m.AccountID),
				slog.String("status", m.RelationshipStatus))
		}
	}
	return current
}

// ComputeEnableList returns the roster accounts that still need to be
// enrolled: not the caller, not already a member, and ACTIVE. Roster order
// is preserved.
func ComputeEnableList(roster []awsenv.Account, current map[string]struct{}, selfID string) []awsenv.Account {
	var out []awsenv.Account
	for _, a := range roster {
		if a.ID == selfID {
			continue
		}
		if _, ok := current[a.ID]; ok {
			continue
		}
		if !a.Active() {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Filter keeps only roster accounts whose id is in allow. A nil allow set
// keeps everything.
func Filter(roster []awsenv.Account, allow map[string]struct{}) []awsenv.Account {
	if allow == nil {
		return roster
	}
	var out []awsenv.Account
	for _, a := range roster {
		if _, ok := allow[a.ID]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Enroller is the Macie surface needed to enroll accounts in one region.
// *macie.Client satisfies it.
type Enroller interface {
	Region() string
	ListMembers(ctx context.Context) ([]macie.Member, error)
	CreateMember(ctx context.Context, accountID, email string) (string, error)
	AutoEnabled(ctx context.Context) (bool, error)
	SetAutoEnable(ctx context.Context, enabled bool) error
	PutExportConfiguration(ctx context.Context, dest macie.ExportDestination) error
}

// Apply turns every account into an enrollment intent and dispatches them
// independently.
func Apply(ctx context.Context, accounts []awsenv.Account, e Enroller, d *dispatch.Dispatcher) dispatch.Outcomes {
	intents := make([]dispatch.Intent, 0, len(accounts))
	for _, a := range accounts {
		intents = append(intents, CreateMemberIntent{Enroller: e, Account: a})
	}
	return d.Dispatch(ctx, intents...)
}

// CreateMemberIntent enrolls one account in one region.
type CreateMemberIntent struct {
	Enroller Enroller
	Account  awsenv.Account
}

func (i CreateMemberIntent) Describe() string {
	return fmt.Sprintf("add account %s to Macie in %s", i.Account.ID, i.Enroller.Region())
}

func (i CreateMemberIntent) Payload() any {
	return map[string]string{"accountId": i.Account.ID, "email": i.Account.Email}
}

func (i CreateMemberIntent) Execute(ctx context.Context) (string, error) {
	return i.Enroller.CreateMember(ctx, i.Account.ID, i.Account.Email)
}

// AutoEnableIntent turns on automatic enrollment of new organization
// accounts in one region.
type AutoEnableIntent struct {
	Enroller Enroller
}

func (i AutoEnableIntent) Describe() string {
	return "auto-enable new accounts in " + i.Enroller.Region()
}

func (i AutoEnableIntent) Payload() any {
	return map[string]bool{"autoEnable": true}
}

func (i AutoEnableIntent) Execute(ctx context.Context) (string, error) {
	if err := i.Enroller.SetAutoEnable(ctx, true); err != nil {
		return "", err
	}
	return "autoEnable=true", nil
}

// ExportIntent points classification results at the export bucket, under
// a per-region key prefix.
type ExportIntent struct {
	Enroller    Enroller
	Destination macie.ExportDestination
}

// NewExportIntent builds the export intent for the enroller's region.
func NewExportIntent(e Enroller, bucket, kmsKeyARN string) ExportIntent {
	return ExportIntent{
		Enroller: e,
		Destination: macie.ExportDestination{
			BucketName: bucket,
			KeyPrefix:  e.Region() + "/",
			KMSKeyARN:  kmsKeyARN,
		},
	}
}

func (i ExportIntent) Describe() string {
	return fmt.Sprintf("apply export configuration s3://%s/%s in %s",
		i.Destination.BucketName, i.Destination.KeyPrefix, i.Enroller.Region())
}

func (i ExportIntent) Payload() any {
	return i.Destination
}

func (i ExportIntent) Execute(ctx context.Context) (string, error) {
	if err := i.Enroller.PutExportConfiguration(ctx, i.Destination); err != nil {
		return "", err
	}
	return "configured", nil
}
