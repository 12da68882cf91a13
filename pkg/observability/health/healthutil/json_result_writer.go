/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package healthutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/alexliesenfeld/health"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

type healthStatus struct {
	Status      string                 `json:"status"`
	CurrentTime time.Time              `json:"currentTime"`
	Components  map[string]checkResult `json:"components,omitempty"`
}

type checkResult struct {
	Status              health.AvailabilityStatus `json:"status"`
	Error               string                    `json:"error,omitempty"`
	LastResponseTime    string                    `json:"last_response_time,omitempty"`
	AverageResponseTime string                    `json:"avg_response_time,omitempty"`
}

// JSONResultWriter writes the checker result as {"status","currentTime","components"}.
type JSONResultWriter struct {
	responseTimes *ResponseTimes
	now           func() time.Time
}

func NewJSONResultWriter(times *ResponseTimes) *JSONResultWriter {
	return &JSONResultWriter{
		responseTimes: times,
		now:           time.Now,
	}
}

func (rw *JSONResultWriter) Write(result *health.CheckerResult, status int, w http.ResponseWriter, _ *http.Request) error { //nolint:lll
	r := &healthStatus{
		Status:      statusSuccess,
		CurrentTime: rw.now().UTC(),
	}

	if result.Status != health.StatusUp {
		r.Status = statusFailure
	}

	if len(result.Details) > 0 {
		r.Components = map[string]checkResult{}

		for name, cr := range result.Details {
			c := checkResult{Status: cr.Status}

			if cr.Error != nil {
				c.Error = cr.Error.Error()
			}

			if t, ok := rw.responseTimes.Get(name); ok {
				c.LastResponseTime = t.LastResponseTime.String()
				c.AverageResponseTime = t.AverageResponseTime.String()
			}

			r.Components[name] = c
		}
	}

	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("cannot marshal response: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_, err = w.Write(b)

	return err
}
