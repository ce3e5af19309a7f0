package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/giantswarm/microerror"
)

// PhonebookClient queries the corporate directory for user profiles.
type PhonebookClient struct {
	baseURL    string
	httpClient *http.Client
}

// PhonebookInterface defines the directory lookup operation.
// This interface enables mocking for testing.
type PhonebookInterface interface {
	Lookup(ctx context.Context, sid string) (UserDetails, error)
}

// NewPhonebookClient creates a directory client.
func NewPhonebookClient(baseURL string) *PhonebookClient {
	return &PhonebookClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// phonebookRecord is the directory's wire format for one person.
type phonebookRecord struct {
	StandardID   string `json:"standardID"`
	NameFull     string `json:"nameFull"`
	Email        string `json:"email"`
	JobTitle     string `json:"jobTitle"`
	BuildingName string `json:"buildingName"`
	CostCenterID string `json:"costCenterID"`
}

// Lookup fetches the profile of the given standard ID.
func (c *PhonebookClient) Lookup(ctx context.Context, sid string) (UserDetails, error) {
	if c.baseURL == "" {
		return UserDetails{}, microerror.Maskf(lookupFailedError, "phonebook URL is not configured")
	}

	url := fmt.Sprintf("%s/people/%s", c.baseURL, sid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return UserDetails{}, microerror.Mask(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UserDetails{}, microerror.Maskf(lookupFailedError, "phonebook request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return UserDetails{}, microerror.Maskf(notFoundError, "no phonebook record for %s", sid)
	}
	if resp.StatusCode != http.StatusOK {
		return UserDetails{}, microerror.Maskf(lookupFailedError, "phonebook returned status %d", resp.StatusCode)
	}

	var record phonebookRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return UserDetails{}, microerror.Maskf(lookupFailedError, "failed to decode phonebook response: %v", err)
	}

	return UserDetails{
		SID:          record.StandardID,
		DisplayName:  record.NameFull,
		Email:        record.Email,
		JobTitle:     record.JobTitle,
		BuildingName: record.BuildingName,
		CostCenterID: record.CostCenterID,
	}, nil
}

// Compile-time assertion that PhonebookClient implements PhonebookInterface
var _ PhonebookInterface = (*PhonebookClient)(nil)
