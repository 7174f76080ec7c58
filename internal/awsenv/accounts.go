package awsenv

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"golang.org/x/time/rate"

	"github.com/ppiankov/maciespectre/internal/paginate"
)

// AccountStatusActive is the roster status of accounts eligible for enrollment.
const AccountStatusActive = "ACTIVE"

// RosterPageSize is the page size used for ListAccounts.
const RosterPageSize = 20

// DefaultRosterPause spaces out ListAccounts pages; the Organizations API
// throttles aggressively.
const DefaultRosterPause = time.Second

// Account is an organization member account.
type Account struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

// Active reports whether the account can be enrolled.
func (a Account) Active() bool {
	return a.Status == AccountStatusActive
}

// Roster reads the organization's account list.
type Roster struct {
	client  OrganizationsClient
	limiter *rate.Limiter
}

// NewRoster creates a roster reader. pause is the minimum spacing between
// page requests; zero disables spacing.
func NewRoster(client OrganizationsClient, pause time.Duration) *Roster {
	r := &Roster{client: client}
	if pause > 0 {
		r.limiter = rate.NewLimiter(rate.Every(pause), 1)
	}
	return r
}

// Accounts returns every account in the organization in the order the
// API returns them.
func (r *Roster) Accounts(ctx context.Context) ([]Account, error) {
	accounts, err := paginate.CollectAll(ctx, func(ctx context.Context, cursor *string) (paginate.Page[Account], error) {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return paginate.Page[Account]{}, err
			}
		}
		out, err := r.client.ListAccounts(ctx, &organizations.ListAccountsInput{
			MaxResults: aws.Int32(RosterPageSize),
			NextToken:  cursor,
		})
		if err != nil {
			return paginate.Page[Account]{}, err
		}

		page := paginate.Page[Account]{Next: out.NextToken}
		for _, a := range out.Accounts {
			page.Items = append(page.Items, Account{
				ID:     aws.ToString(a.Id),
				Name:   aws.ToString(a.Name),
				Email:  aws.ToString(a.Email),
				Status: string(a.Status),
			})
		}
		return page, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list organization accounts: %w", err)
	}
	return accounts, nil
}
