package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const userAgent = "hhiwi"

// Task is the Harvest task a time entry was booked on.
type Task struct {
	Name string `json:"name"`
}

// TimeEntry is one raw time entry as returned by the Harvest v2 API. Only the
// fields the pipeline consumes are decoded.
type TimeEntry struct {
	CreatedAt time.Time `json:"created_at"`
	Hours     float64   `json:"hours"`
	Task      Task      `json:"task"`
}

// Project is a Harvest project.
type Project struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Client is an authenticated Harvest v2 API client. Harvest uses a static
// personal access token, so the oauth2 client is built from a StaticTokenSource.
type Client struct {
	baseURL    string
	accountID  string
	httpClient *http.Client
}

// NewClient creates a client for the given API base URL (e.g.
// "https://api.harvestapp.com/v2/"), account id and access token.
func NewClient(ctx context.Context, baseURL, accountID, token string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		accountID:  accountID,
		httpClient: oauth2.NewClient(ctx, ts),
	}
}

// timeEntriesPage is one page of the paginated time_entries response.
type timeEntriesPage struct {
	TimeEntries []TimeEntry `json:"time_entries"`
	NextPage    *int        `json:"next_page"`
}

// projectsPage is one page of the paginated projects response.
type projectsPage struct {
	Projects []Project `json:"projects"`
	NextPage *int      `json:"next_page"`
}

// TimeEntries fetches all time entries of a project, following pagination
// until the API stops announcing a next page. The full list is accumulated in
// memory before it is returned.
func (c *Client) TimeEntries(ctx context.Context, projectID string) ([]TimeEntry, error) {
	var all []TimeEntry
	page := 1
	for {
		endpoint := fmt.Sprintf("%s/time_entries?project_id=%s&page=%d",
			c.baseURL, url.QueryEscape(projectID), page)

		var resp timeEntriesPage
		if err := c.get(ctx, endpoint, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.TimeEntries...)
		if resp.NextPage == nil {
			return all, nil
		}
		page = *resp.NextPage
	}
}

// Projects fetches all projects visible to the account.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var all []Project
	page := 1
	for {
		endpoint := fmt.Sprintf("%s/projects?page=%d", c.baseURL, page)

		var resp projectsPage
		if err := c.get(ctx, endpoint, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Projects...)
		if resp.NextPage == nil {
			return all, nil
		}
		page = *resp.NextPage
	}
}

// get performs one authenticated GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Harvest-Account-Id", c.accountID)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("harvest API request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("harvest API error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding harvest response: %w", err)
	}
	return nil
}
