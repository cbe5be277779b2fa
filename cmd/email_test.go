/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/insight"
	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/store"
)

func TestGenerateEmailContent(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	report, err := insight.AnalyzeAt(testListening(), at)
	if err != nil {
		t.Fatalf("AnalyzeAt: %v", err)
	}

	subject, body := generateEmailContent("testuser", report)

	if subject != "Listening insights for testuser, 2024-06-01" {
		t.Errorf("unexpected subject: %q", subject)
	}
	for _, want := range []string{
		"<h2>Top genres</h2>",
		"<h2>Discovery timeline</h2>",
		"<td>folk</td>",
		"Simon &amp; Garfunkel",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("email body does not contain %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "Simon & Garfunkel") {
		t.Errorf("artist name was not escaped:\n%s", body)
	}
}

func TestGenerateEmailContentNoData(t *testing.T) {
	report, err := insight.Analyze(insight.Listening{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	_, body := generateEmailContent("testuser", report)
	if !strings.Contains(body, "<div>No data.</div>") {
		t.Errorf("expected empty tables to say so:\n%s", body)
	}
}

func TestSendEmailDryRun(t *testing.T) {
	db, dbPath := createTestDb(t)
	if _, err := db.SaveSnapshot("testuser", "spotify", testListening(), time.Now()); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	config := SendEmailConfig{DbPath: dbPath, User: "TestUser", To: "test@example.com", DryRun: true}
	if err := sendEmail(config); err != nil {
		t.Errorf("sendEmail: %v", err)
	}
}

func TestSendEmailWithoutSnapshot(t *testing.T) {
	_, dbPath := createTestDb(t)

	config := SendEmailConfig{DbPath: dbPath, User: "testuser", To: "test@example.com", DryRun: true}
	err := sendEmail(config)
	if !errors.Is(err, store.ErrNoSnapshot) {
		t.Errorf("expected ErrNoSnapshot, got %v", err)
	}
}
