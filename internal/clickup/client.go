package clickup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"

	"mtgsync/internal/models"
)

// DefaultBaseURL is the public ClickUp API v2 endpoint.
const DefaultBaseURL = "https://api.clickup.com/api/v2"

// Client is a client for the ClickUp REST API scoped to one team and list.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
	teamID string
	listID string
}

type teamsResponse struct {
	Teams []struct {
		ID      string `json:"id"`
		Members []struct {
			User struct {
				ID    int64  `json:"id"`
				Email string `json:"email"`
			} `json:"user"`
		} `json:"members"`
	} `json:"teams"`
}

type createTaskResponse struct {
	ID string `json:"id"`
}

// NewClient creates a ClickUp client authenticated with a personal API key.
func NewClient(logger *slog.Logger, baseURL, apiKey, teamID, listID string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Authorization", apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "mtgsync/1.0")

	return &Client{
		http:   httpClient,
		logger: logger,
		teamID: teamID,
		listID: listID,
	}
}

// Members returns every member of every team visible to the API key.
func (c *Client) Members(ctx context.Context) ([]models.Member, error) {
	c.logger.Debug("Fetching ClickUp members")

	var result teamsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/team")
	if err != nil {
		return nil, fmt.Errorf("failed to request teams: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to list teams: %s: %s", resp.Status(), strings.TrimSpace(resp.String()))
	}

	var members []models.Member
	for _, team := range result.Teams {
		for _, m := range team.Members {
			members = append(members, models.Member{ID: m.User.ID, Email: m.User.Email})
		}
	}
	c.logger.Debug("Fetched ClickUp members", "teams", len(result.Teams), "members", len(members))
	return members, nil
}

// CreateTask creates a task in the configured list and returns its id.
func (c *Client) CreateTask(ctx context.Context, task models.Task) (string, error) {
	var created createTaskResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("listID", c.listID).
		SetQueryParams(map[string]string{
			"custom_task_ids": "true",
			"team_id":         c.teamID,
		}).
		SetBody(task).
		SetResult(&created).
		Post("/list/{listID}/task")
	if err != nil {
		return "", fmt.Errorf("failed to request task creation: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("failed to create task %q: %s: %s", task.Name, resp.Status(), strings.TrimSpace(resp.String()))
	}

	c.logger.Debug("Created ClickUp task", "name", task.Name, "id", created.ID)
	return created.ID, nil
}
