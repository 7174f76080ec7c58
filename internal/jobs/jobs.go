package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/macie2"
	"github.com/aws/aws-sdk-go-v2/service/macie2/types"

	"github.com/ppiankov/maciespectre/internal/criteria"
	"github.com/ppiankov/maciespectre/internal/macie"
)

// Type is the classification job type.
type Type string

const (
	OneTime   Type = Type(types.JobTypeOneTime)
	Scheduled Type = Type(types.JobTypeScheduled)
)

// ScheduleDay is the weekday scheduled jobs run on.
const ScheduleDay = types.DayOfWeekMonday

// DefaultSample is the sampling percentage used when none is given.
const DefaultSample = 100

var (
	// ErrNoJobType is returned when neither one-time nor scheduled was chosen.
	ErrNoJobType = errors.New("neither --weekly nor --onetime specified")
	// ErrInvalidSample is returned for a sampling percentage outside 1..100.
	ErrInvalidSample = errors.New("sampling percentage must be between 1 and 100")
)

// Spec describes one classification job to create in one region. It is
// never persisted locally.
type Spec struct {
	Name               string
	Description        string
	Type               Type
	SamplingPercentage int32
	Region             string
	Criteria           criteria.JobCriteria
}

// TypeFromFlags maps the weekly/onetime switches to a job type. Weekly wins
// when both are set.
func TypeFromFlags(weekly, onetime bool) (Type, error) {
	switch {
	case weekly:
		return Scheduled, nil
	case onetime:
		return OneTime, nil
	}
	return "", ErrNoJobType
}

// NewSpec validates the inputs and builds a Spec for region.
func NewSpec(name, description string, jobType Type, sample int, region string, c criteria.JobCriteria) (Spec, error) {
	if name == "" {
		return Spec{}, errors.New("job name is required")
	}
	if jobType != OneTime && jobType != Scheduled {
		return Spec{}, fmt.Errorf("unknown job type %q", jobType)
	}
	if sample < 1 || sample > 100 {
		return Spec{}, fmt.Errorf("%w: got %d", ErrInvalidSample, sample)
	}
	if c == nil {
		c = criteria.PublicBuckets{}
	}
	return Spec{
		Name:               name,
		Description:        description,
		Type:               jobType,
		SamplingPercentage: int32(sample),
		Region:             region,
		Criteria:           c,
	}, nil
}

// JobName is the regional job name, "<name>-<region>".
func (s Spec) JobName() string {
	return s.Name + "-" + s.Region
}

// InitialRun is true for one-time jobs. Scheduled jobs only scan objects
// changed since their previous run.
func (s Spec) InitialRun() bool {
	return s.Type == OneTime
}

// Input renders the Spec as a CreateClassificationJob request.
func (s Spec) Input() *macie2.CreateClassificationJobInput {
	in := &macie2.CreateClassificationJobInput{
		Name:               aws.String(s.JobName()),
		JobType:            types.JobType(s.Type),
		InitialRun:         aws.Bool(s.InitialRun()),
		SamplingPercentage: aws.Int32(s.SamplingPercentage),
		S3JobDefinition:    s.Criteria.S3JobDefinition(),
	}
	if s.Description != "" {
		in.Description = aws.String(s.Description)
	}
	if s.Type == Scheduled {
		in.ScheduleFrequency = &types.JobScheduleFrequency{
			WeeklySchedule: &types.WeeklySchedule{DayOfWeek: ScheduleDay},
		}
	}
	return in
}

// Creator is the Macie surface needed to create jobs. *macie.Client
// satisfies it.
type Creator interface {
	Region() string
	CreateClassificationJob(ctx context.Context, in *macie2.CreateClassificationJobInput) (macie.JobRef, error)
}

// CreateIntent creates one job when dispatched.
type CreateIntent struct {
	Creator Creator
	Spec    Spec
}

func (i CreateIntent) Describe() string {
	return fmt.Sprintf("create job %s in %s", i.Spec.JobName(), i.Creator.Region())
}

func (i CreateIntent) Payload() any {
	return i.Spec.Input()
}

func (i CreateIntent) Execute(ctx context.Context) (string, error) {
	ref, err := i.Creator.CreateClassificationJob(ctx, i.Spec.Input())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ID: %s (%s)", ref.ID, ref.ARN), nil
}
