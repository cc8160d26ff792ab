package publish

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"zoneboard/internal/score"
)

const githubAPIBase = "https://api.github.com"

// GitHub publishes the leaderboard document as a file in a repository
// via the contents API. Updating an existing file requires its current
// blob SHA, so each publish probes for the file first.
type GitHub struct {
	Token          string
	RepoOwner      string
	RepoName       string
	FilePath       string
	CommitterName  string
	CommitterEmail string

	// BaseURL overrides the API endpoint in tests.
	BaseURL    string
	HTTPClient *http.Client
}

type contentsPayload struct {
	Message   string     `json:"message"`
	Content   string     `json:"content"`
	SHA       string     `json:"sha,omitempty"`
	Committer *committer `json:"committer,omitempty"`
}

type committer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Publish creates or updates the scores file in the repository.
func (g *GitHub) Publish(ctx context.Context, doc *score.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding leaderboard: %w", err)
	}

	sha, err := g.currentSHA(ctx)
	if err != nil {
		return err
	}

	payload := contentsPayload{
		Message: "Update scores data",
		Content: base64.StdEncoding.EncodeToString(data),
		SHA:     sha,
	}
	if g.CommitterName != "" && g.CommitterEmail != "" {
		payload.Committer = &committer{Name: g.CommitterName, Email: g.CommitterEmail}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding contents payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, g.contentsURL(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	g.setHeaders(req)

	resp, err := g.client().Do(req)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", g.FilePath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GitHub upload failed: %d: %s", resp.StatusCode, msg)
	}

	return nil
}

// currentSHA returns the existing file's blob SHA, or "" when the file
// doesn't exist yet.
func (g *GitHub) currentSHA(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.contentsURL(), nil)
	if err != nil {
		return "", err
	}
	g.setHeaders(req)

	resp, err := g.client().Do(req)
	if err != nil {
		return "", fmt.Errorf("checking existing %s: %w", g.FilePath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("GitHub contents check failed: %d: %s", resp.StatusCode, msg)
	}

	var current struct {
		SHA string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&current); err != nil {
		return "", fmt.Errorf("decoding contents response: %w", err)
	}
	return current.SHA, nil
}

func (g *GitHub) contentsURL() string {
	base := g.BaseURL
	if base == "" {
		base = githubAPIBase
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", base, g.RepoOwner, g.RepoName, g.FilePath)
}

func (g *GitHub) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "token "+g.Token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
}

func (g *GitHub) client() *http.Client {
	if g.HTTPClient != nil {
		return g.HTTPClient
	}
	return http.DefaultClient
}
