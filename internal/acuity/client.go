package acuity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	appLog "recurbook/internal/log"
)

const (
	defaultBaseURL = "https://acuityscheduling.com/api/v1"

	// maxErrorBody caps how much of an error response body is kept for the
	// error message.
	maxErrorBody = 512
)

// ListParams are the filter parameters of an appointment list query.
type ListParams struct {
	MinDate    time.Time
	MaxDate    time.Time
	CalendarID int64
	Max        int

	// Email, if non-empty, restricts results to one client.
	Email string

	// ExcludeForms asks the service to omit online-form bookings server-side.
	ExcludeForms bool
}

// CreateRequest is the body of an appointment create call. Datetime carries
// no zone offset; the service books it on its own local clock.
type CreateRequest struct {
	Datetime          string `json:"datetime"`
	AppointmentTypeID int64  `json:"appointmentTypeID"`
	CalendarID        int64  `json:"calendarID"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
}

// Client talks to the scheduling service's appointments API with basic auth.
type Client struct {
	baseURL  string
	userName string
	apiKey   string
	client   *http.Client
}

// NewClient creates a scheduling API client. baseURL may be empty, in which
// case the production endpoint is used.
func NewClient(baseURL, userName, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:  baseURL,
		userName: userName,
		apiKey:   apiKey,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// List fetches the appointments matching p. The service is trusted to apply
// the date range and filters; results come back in its natural order, which
// callers must preserve.
func (c *Client) List(ctx context.Context, p ListParams) ([]Appointment, error) {
	q := url.Values{}
	q.Set("minDate", p.MinDate.Format(time.RFC3339))
	q.Set("maxDate", p.MaxDate.Format(time.RFC3339))
	q.Set("calendarID", strconv.FormatInt(p.CalendarID, 10))
	q.Set("max", strconv.Itoa(p.Max))
	if p.Email != "" {
		q.Set("email", p.Email)
	}
	if p.ExcludeForms {
		q.Set("excludeForms", "true")
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/appointments", q, nil)
	if err != nil {
		return nil, err
	}

	appLog.Debug("appointments fetch start",
		"calendar", p.CalendarID,
		"min_date", p.MinDate.Format(time.RFC3339),
		"max_date", p.MaxDate.Format(time.RFC3339),
		"filtered_by_email", p.Email != "",
	)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("appointments fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("appointments fetch: %s", responseError(resp))
	}

	var appts []Appointment
	if err := json.NewDecoder(resp.Body).Decode(&appts); err != nil {
		return nil, fmt.Errorf("appointments fetch: decode response: %w", err)
	}

	appLog.Debug("appointments fetch success", "calendar", p.CalendarID, "count", len(appts))
	return appts, nil
}

// Create books a new appointment. The notification email is always
// suppressed and the call always runs with administrative privileges; both
// flags are fixed behavior of this client, not caller choices.
func (c *Client) Create(ctx context.Context, r CreateRequest) (Appointment, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return Appointment{}, fmt.Errorf("appointment create: encode request: %w", err)
	}

	q := url.Values{}
	q.Set("noEmail", "true")
	q.Set("admin", "true")

	req, err := c.newRequest(ctx, http.MethodPost, "/appointments", q, bytes.NewReader(body))
	if err != nil {
		return Appointment{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Appointment{}, fmt.Errorf("appointment create: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Appointment{}, fmt.Errorf("appointment create: %s", responseError(resp))
	}

	var created Appointment
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return Appointment{}, fmt.Errorf("appointment create: decode response: %w", err)
	}

	appLog.Debug("appointment created", "id", created.ID, "calendar", r.CalendarID, "datetime", r.Datetime)
	return created, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, q url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.userName, c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// responseError describes a non-success response, keeping a bounded slice of
// the body for diagnostics.
func responseError(resp *http.Response) string {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if len(b) == 0 {
		return resp.Status
	}
	return resp.Status + ": " + string(b)
}
