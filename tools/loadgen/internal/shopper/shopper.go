// Package shopper drives realistic storefront journeys against the API.
package shopper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// ErrUnexpectedStatus is wrapped by step errors for non-2xx answers.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Recorder receives the outcome of every request.
type Recorder interface {
	RecordStep(step string, status int, latency time.Duration, err error)
}

// Shopper sends one journey's requests. It is not safe for concurrent use;
// the runner creates one per journey.
type Shopper struct {
	client   *http.Client
	apiBase  string
	clientID string
	faker    *gofakeit.Faker
	recorder Recorder
	token    string
}

// New creates a shopper identified by a fresh client ID.
func New(client *http.Client, apiBase string, faker *gofakeit.Faker, recorder Recorder) *Shopper {
	return &Shopper{
		client:   client,
		apiBase:  apiBase,
		clientID: faker.UUID(),
		faker:    faker,
		recorder: recorder,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type request struct {
	step        string
	method      string
	path        string
	body        io.Reader
	contentType string
	headers     map[string]string
	expect      []int
}

// do sends r, records it and decodes the envelope data into out when non-nil.
func (s *Shopper) do(ctx context.Context, r request, out any) error {
	req, err := http.NewRequestWithContext(ctx, r.method, s.apiBase+r.path, r.body)
	if err != nil {
		s.recorder.RecordStep(r.step, 0, 0, err)
		return err
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	req.Header.Set("X-Client-ID", s.clientID)
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		s.recorder.RecordStep(r.step, 0, latency, err)
		return fmt.Errorf("%s: %w", r.step, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	if !expected(resp.StatusCode, r.expect) {
		err := fmt.Errorf("%s: %w %d: %s", r.step, ErrUnexpectedStatus, resp.StatusCode, truncate(string(raw), 200))
		s.recorder.RecordStep(r.step, resp.StatusCode, latency, err)
		return err
	}
	s.recorder.RecordStep(r.step, resp.StatusCode, latency, nil)

	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%s: decoding response: %w", r.step, err)
	}
	return json.Unmarshal(env.Data, out)
}

func (s *Shopper) get(ctx context.Context, step, path string, out any) error {
	return s.do(ctx, request{step: step, method: http.MethodGet, path: path}, out)
}

func (s *Shopper) send(ctx context.Context, step, method, path string, body any, out any, expect ...int) error {
	r := request{step: step, method: method, path: path, expect: expect}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r.body = bytes.NewReader(data)
		r.contentType = "application/json"
	}
	return s.do(ctx, r, out)
}

func (s *Shopper) newSession(ctx context.Context) (string, error) {
	var created struct {
		SessionID string `json:"session_id"`
	}
	if err := s.send(ctx, "create_session", http.MethodPost, "/sessions", nil, &created, http.StatusCreated); err != nil {
		return "", err
	}
	return created.SessionID, nil
}

func (s *Shopper) addItem(ctx context.Context, sid, medicineID string, qty int) error {
	return s.send(ctx, "add_item", http.MethodPost, "/sessions/"+sid+"/cart/items",
		map[string]any{"medicine_id": medicineID, "quantity": qty}, nil)
}

func (s *Shopper) uploadPrescription(ctx context.Context, sid string) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "prescription.png")
	if err != nil {
		return err
	}
	if _, err := part.Write(prescriptionImage); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}
	return s.do(ctx, request{
		step:        "upload_prescription",
		method:      http.MethodPost,
		path:        "/sessions/" + sid + "/prescription",
		body:        &buf,
		contentType: mw.FormDataContentType(),
		expect:      []int{http.StatusCreated},
	}, nil)
}

func (s *Shopper) checkout(ctx context.Context, sid string) (string, error) {
	var conf struct {
		OrderID string `json:"order_id"`
	}
	body := map[string]any{
		"address": map[string]string{
			"full_name":     s.faker.Name(),
			"address_line1": s.faker.Street(),
			"city":          s.faker.City(),
			"zip_code":      s.faker.Zip(),
			"phone_number":  s.faker.Phone(),
		},
		"payment_method": pick(s.faker, "creditCard", "paypal", "cod"),
		"fulfillment":    pick(s.faker, "delivery", "pickup"),
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	err = s.do(ctx, request{
		step:        "checkout",
		method:      http.MethodPost,
		path:        "/sessions/" + sid + "/checkout",
		body:        bytes.NewReader(data),
		contentType: "application/json",
		headers:     map[string]string{"Idempotency-Key": s.faker.UUID()},
		expect:      []int{http.StatusCreated},
	}, &conf)
	return conf.OrderID, err
}

func (s *Shopper) closeSession(ctx context.Context, sid string) error {
	return s.send(ctx, "close_session", http.MethodDelete, "/sessions/"+sid, nil, nil)
}

// prescriptionImage is the smallest payload the upload endpoint accepts as PNG
var prescriptionImage = []byte("\x89PNG\r\n\x1a\nloadgen-prescription")

func expected(status int, accept []int) bool {
	if len(accept) == 0 {
		return status >= 200 && status < 300
	}
	for _, s := range accept {
		if s == status {
			return true
		}
	}
	return false
}

func pick(f *gofakeit.Faker, options ...string) string {
	return options[f.IntRange(0, len(options)-1)]
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
