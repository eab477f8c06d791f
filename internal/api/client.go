// Package api is the client for the remote face-recognition attendance
// service. It owns the four identity submissions and interprets each
// endpoint's response shape into a user-facing outcome.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/Spartificial/project-services/internal/config"
)

// logoutSuccessMessage is the exact message the service returns on a
// successful logout. Anything else means the user was not logged out.
const logoutSuccessMessage = "Logged out successfully."

// snapshotFileName is the filename the service expects for uploaded frames.
const snapshotFileName = "webcam-frame.png"

// Client talks to the attendance service. It never retains a snapshot
// after a call completes, and no call is retried.
type Client struct {
	baseURL   string
	parsedURL *url.URL
	keys      config.RegisterKeys
}

// New creates a Client for the given base origin. The register key mapping
// comes from configuration because the service's query-parameter names
// vary between revisions.
func New(rawURL string, keys config.RegisterKeys) (*Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid attendance service URL: %w", err)
	}
	return &Client{baseURL: rawURL, parsedURL: parsed, keys: keys}, nil
}

// resolveURL builds a full URL from the base origin, the endpoint path,
// and an optional query.
func (c *Client) resolveURL(endpoint string, query url.Values) string {
	result := c.parsedURL.JoinPath(endpoint)
	if query != nil {
		result.RawQuery = query.Encode()
	}
	return result.String()
}

type loginResponse struct {
	User        string `json:"user"`
	MatchStatus *bool  `json:"match_status"`
}

// Login posts a fresh snapshot to the login endpoint. A true match_status
// is a successful login; a present-but-false match_status is an unknown
// user. A body without match_status at all is the service's
// already-logged-in reply, which carries only a message string.
func (c *Client) Login(snapshot []byte) (Outcome, error) {
	body, contentType, err := snapshotForm(snapshot)
	if err != nil {
		return Outcome{}, err
	}

	respBody, err := c.post("login", nil, body, contentType)
	if err != nil {
		return Outcome{}, err
	}

	var result loginResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return Outcome{}, fmt.Errorf("could not unmarshal login response: %w", err)
	}

	switch {
	case result.MatchStatus == nil:
		return Outcome{Kind: LoginAlreadyActive, User: result.User}, nil
	case *result.MatchStatus:
		return Outcome{Kind: LoginSuccess, User: result.User}, nil
	default:
		return Outcome{Kind: LoginUnknownUser, User: result.User}, nil
	}
}

type logoutResponse struct {
	User    string `json:"user"`
	Message string `json:"message"`
}

// Logout posts the caller-supplied identity key to the logout endpoint.
// No snapshot is sent; identity is asserted by the key alone.
func (c *Client) Logout(email string) (Outcome, error) {
	query := url.Values{"email": {email}}

	respBody, err := c.post("logout", query, nil, "")
	if err != nil {
		return Outcome{}, err
	}

	var result logoutResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return Outcome{}, fmt.Errorf("could not unmarshal logout response: %w", err)
	}

	if result.Message == logoutSuccessMessage {
		return Outcome{Kind: LogoutSuccess, User: result.User}, nil
	}
	return Outcome{Kind: LogoutUnknownUser, User: result.User, Detail: result.Message}, nil
}

// Registration carries the five registration fields, already validated.
type Registration struct {
	Name    string
	Email   string
	Phone   string
	Class   string
	Section string
}

type registerResponse struct {
	// Older service revisions report "status", newer ones
	// "registration_status". Either one counts.
	RegistrationStatus int    `json:"registration_status"`
	Status             int    `json:"status"`
	Message            string `json:"message"`
}

// Register posts a snapshot plus the five fields (as config-mapped query
// keys) to the registration endpoint. A status of 200 in the body is the
// only success signal.
func (c *Client) Register(reg Registration, snapshot []byte) (Outcome, error) {
	body, contentType, err := snapshotForm(snapshot)
	if err != nil {
		return Outcome{}, err
	}

	query := url.Values{
		c.keys.Name:    {reg.Name},
		c.keys.Email:   {reg.Email},
		c.keys.Phone:   {reg.Phone},
		c.keys.Class:   {reg.Class},
		c.keys.Section: {reg.Section},
	}

	respBody, err := c.post("register_new_user", query, body, contentType)
	if err != nil {
		return Outcome{}, err
	}

	var result registerResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return Outcome{}, fmt.Errorf("could not unmarshal register response: %w", err)
	}

	if result.RegistrationStatus == http.StatusOK || result.Status == http.StatusOK {
		return Outcome{Kind: RegistrationSuccess, User: reg.Email}, nil
	}
	return Outcome{Kind: RegistrationFailure, User: reg.Email, Detail: result.Message}, nil
}

// AttendanceLogs fetches the attendance log archive. The caller owns the
// reader and persists the bytes (conventionally as logs.zip).
func (c *Client) AttendanceLogs() (io.ReadCloser, int64, error) {
	return c.download("get_attendance_logs")
}

// RegisteredUsers fetches the registered-user listing as CSV bytes.
func (c *Client) RegisteredUsers() (io.ReadCloser, int64, error) {
	return c.download("get_registered_users_logs")
}

func (c *Client) download(endpoint string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, c.resolveURL(endpoint, nil), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("could not create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("could not send request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		detail := readErrorBody(resp.Body)
		resp.Body.Close()
		return nil, 0, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, detail)
	}

	return resp.Body, resp.ContentLength, nil
}

func (c *Client) post(endpoint string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, c.resolveURL(endpoint, query), body)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	return respBody, nil
}

// snapshotForm wraps a PNG snapshot in a single-file multipart form.
func snapshotForm(snapshot []byte) (io.Reader, string, error) {
	if len(snapshot) == 0 {
		return nil, "", fmt.Errorf("no snapshot to upload")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", snapshotFileName)
	if err != nil {
		return nil, "", fmt.Errorf("could not create form file: %w", err)
	}
	if _, err := part.Write(snapshot); err != nil {
		return nil, "", fmt.Errorf("could not write file data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("could not close writer: %w", err)
	}

	return &body, writer.FormDataContentType(), nil
}

// readErrorBody reads the response body for error messages.
// Returns a placeholder if reading fails (we're already in an error path).
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(r)
	if err != nil {
		return "(could not read error body)"
	}
	return string(body)
}
