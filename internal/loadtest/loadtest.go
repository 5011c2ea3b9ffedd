// Package loadtest fires concurrent requests against a running Immofox API
// and summarises latencies and status codes.
package loadtest

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// Runner sends Requests requests with at most Concurrency in flight
type Runner struct {
	BaseURL     string
	Concurrency int
	Requests    int
	Token       string
	Client      *resty.Client
}

// Result summarises one run against one endpoint
type Result struct {
	URL            string        `json:"url"`
	Method         string        `json:"method"`
	Concurrency    int           `json:"concurrency"`
	TotalRequests  int           `json:"total_requests"`
	SuccessCount   int           `json:"success_count"`
	FailureCount   int           `json:"failure_count"`
	TotalTime      time.Duration `json:"total_time"`
	AverageTime    time.Duration `json:"average_time"`
	MinTime        time.Duration `json:"min_time"`
	MaxTime        time.Duration `json:"max_time"`
	P95Time        time.Duration `json:"p95_time"`
	RequestsPerSec float64       `json:"requests_per_sec"`
	StatusCodes    map[int]int   `json:"status_codes"`
	Errors         []string      `json:"errors"`
}

type sample struct {
	duration   time.Duration
	statusCode int
	err        error
}

// envelope is the answer shape of every API endpoint
type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewRunner creates a runner with a 10 second request timeout
func NewRunner(baseURL string, concurrency, requests int) *Runner {
	if concurrency <= 0 {
		concurrency = 1
	}
	if requests <= 0 {
		requests = 1
	}
	return &Runner{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Concurrency: concurrency,
		Requests:    requests,
		Client:      resty.New().SetTimeout(10 * time.Second),
	}
}

// Login fetches a token and uses it for all following requests
func (r *Runner) Login(ctx context.Context, email, password string) error {
	var out struct {
		envelope
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	resp, err := r.Client.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		SetError(&out).
		Post(r.BaseURL + "/auth/login")
	if err != nil {
		return errors.Wrap(err, "login request")
	}
	if resp.IsError() || out.Data.Token == "" {
		return errors.Errorf("login failed: %s %s", resp.Status(), out.Message)
	}
	r.Token = out.Data.Token
	return nil
}

// Run sends the configured number of requests with method to path
func (r *Runner) Run(ctx context.Context, method, path string, body interface{}) *Result {
	url := r.BaseURL + path
	samples := make(chan sample, r.Requests)
	jobs := make(chan struct{})

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < r.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				samples <- r.do(ctx, method, url, body)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < r.Requests; i++ {
			select {
			case jobs <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(samples)
	}()

	result := summarise(samples)
	result.URL = url
	result.Method = method
	result.Concurrency = r.Concurrency
	result.TotalTime = time.Since(start)
	if secs := result.TotalTime.Seconds(); secs > 0 {
		result.RequestsPerSec = float64(result.TotalRequests) / secs
	}
	return result
}

func (r *Runner) do(ctx context.Context, method, url string, body interface{}) sample {
	req := r.Client.R().SetContext(ctx)
	if r.Token != "" {
		req.SetAuthToken(r.Token)
	}
	if body != nil {
		req.SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, url)
	if err != nil {
		return sample{err: err}
	}
	return sample{duration: time.Since(start), statusCode: resp.StatusCode()}
}

// summarise drains samples into a result without the run metadata
func summarise(samples <-chan sample) *Result {
	result := &Result{StatusCodes: make(map[int]int)}
	var durations []time.Duration
	var total time.Duration

	for s := range samples {
		result.TotalRequests++
		if s.err != nil {
			result.FailureCount++
			result.Errors = append(result.Errors, s.err.Error())
			continue
		}
		durations = append(durations, s.duration)
		total += s.duration
		result.StatusCodes[s.statusCode]++
		if s.statusCode >= 200 && s.statusCode < 300 {
			result.SuccessCount++
		} else {
			result.FailureCount++
		}
	}

	if len(durations) == 0 {
		return result
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	result.MinTime = durations[0]
	result.MaxTime = durations[len(durations)-1]
	result.AverageTime = total / time.Duration(len(durations))
	result.P95Time = durations[(len(durations)*95+99)/100-1]
	return result
}

// Print writes a human readable report
func (r *Result) Print(w io.Writer) {
	fmt.Fprintf(w, "%s %s\n", r.Method, r.URL)
	fmt.Fprintf(w, "  Parallelität:   %d\n", r.Concurrency)
	fmt.Fprintf(w, "  Anfragen:       %d (ok %d, fehlgeschlagen %d)\n", r.TotalRequests, r.SuccessCount, r.FailureCount)
	fmt.Fprintf(w, "  Gesamtdauer:    %s\n", r.TotalTime)
	fmt.Fprintf(w, "  Latenz:         min %s, avg %s, p95 %s, max %s\n", r.MinTime, r.AverageTime, r.P95Time, r.MaxTime)
	fmt.Fprintf(w, "  Anfragen/s:     %.2f\n", r.RequestsPerSec)

	codes := make([]int, 0, len(r.StatusCodes))
	for c := range r.StatusCodes {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	for _, c := range codes {
		fmt.Fprintf(w, "  Status %d:     %d\n", c, r.StatusCodes[c])
	}
	for i, e := range r.Errors {
		if i >= 5 {
			fmt.Fprintf(w, "  ... %d weitere Fehler\n", len(r.Errors)-5)
			break
		}
		fmt.Fprintf(w, "  Fehler: %s\n", e)
	}
}
