//go:build integration_test || all_tests

package apitest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/2beens/fitcoach/internal/coaching"
	"github.com/2beens/fitcoach/internal/coaching/resolve"
	"github.com/2beens/fitcoach/internal/coaching/roster"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		UserID string `json:"userId"`
		Role   string `json:"role"`
	} `json:"user"`
}

func (s *IntegrationTestSuite) do(method, path, token string, body any) (int, []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		s.Require().NoError(err)
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	s.Require().NoError(err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	return resp.StatusCode, respBytes
}

func (s *IntegrationTestSuite) login(email, password string) loginResponse {
	status, body := s.do(http.MethodPost, "/auth/login", "", loginRequest{Email: email, Password: password})
	s.Require().Equal(http.StatusOK, status, string(body))

	var resp loginResponse
	s.Require().NoError(json.Unmarshal(body, &resp))
	s.Require().NotEmpty(resp.Token)
	return resp
}

func (s *IntegrationTestSuite) createClient(coachToken, email, password string) roster.ClientProfile {
	status, body := s.do(http.MethodPost, "/clients", coachToken, roster.NewClient{
		Email:       email,
		Password:    password,
		Name:        "Test Client",
		LicenseDays: 30,
	})
	s.Require().Equal(http.StatusCreated, status, string(body))

	var profile roster.ClientProfile
	s.Require().NoError(json.Unmarshal(body, &profile))
	return profile
}

func (s *IntegrationTestSuite) TestLogin() {
	status, _ := s.do(http.MethodPost, "/auth/login", "", loginRequest{Email: testCoachEmail, Password: "wrong"})
	s.Equal(http.StatusUnauthorized, status)

	coach := s.login(testCoachEmail, testCoachPassword)
	s.Equal(roster.RoleCoach, coach.User.Role)

	status, body := s.do(http.MethodGet, "/auth/me", coach.Token, nil)
	s.Require().Equal(http.StatusOK, status)
	s.Contains(string(body), testCoachEmail)

	status, body = s.do(http.MethodGet, "/auth/logout", coach.Token, nil)
	s.Equal(http.StatusOK, status)
	s.Equal("logged-out", string(body))

	// the jwt is still well formed, but its session is gone
	status, _ = s.do(http.MethodGet, "/auth/me", coach.Token, nil)
	s.Equal(http.StatusUnauthorized, status)
}

func (s *IntegrationTestSuite) TestCoachAndClientFlow() {
	coach := s.login(testCoachEmail, testCoachPassword)
	profile := s.createClient(coach.Token, "ana@example.com", "secret1")

	// duplicate sign-in email
	status, _ := s.do(http.MethodPost, "/clients", coach.Token, roster.NewClient{
		Email:    "ANA@example.com",
		Password: "secret2",
	})
	s.Equal(http.StatusConflict, status)

	client := s.login("ana@example.com", "secret1")
	s.Equal(roster.RoleClient, client.User.Role)
	s.Equal(profile.ID, client.User.UserID)

	// coach plans steps, the next days inherit them
	status, body := s.do(http.MethodPatch, "/clients/"+profile.ID+"/days/2024-03-04", coach.Token,
		map[string]any{"kind": "plannedSteps", "value": 12000})
	s.Require().Equal(http.StatusOK, status, string(body))

	// clients cannot touch planned values
	status, _ = s.do(http.MethodPatch, "/clients/"+profile.ID+"/days/2024-03-05", client.Token,
		map[string]any{"kind": "plannedSteps", "value": 3000})
	s.Equal(http.StatusForbidden, status)

	status, body = s.do(http.MethodPatch, "/clients/"+profile.ID+"/days/2024-03-06", client.Token,
		map[string]any{"kind": "bodyWeight", "value": 80.5})
	s.Require().Equal(http.StatusOK, status, string(body))

	status, body = s.do(http.MethodGet, "/clients/"+profile.ID+"/days/2024-03-06", coach.Token, nil)
	s.Require().Equal(http.StatusOK, status)
	var view resolve.EffectiveView
	s.Require().NoError(json.Unmarshal(body, &view))
	s.True(view.Stored)
	s.Equal(80.5, view.Record.BodyWeight)
	s.Equal(12000, view.PlannedSteps)
	s.Require().NotNil(view.StepsOriginDate)
	s.Equal("2024-03-04", view.StepsOriginDate.String())

	status, body = s.do(http.MethodGet, "/clients", coach.Token, nil)
	s.Require().Equal(http.StatusOK, status)
	var list coaching.ListClientsResponse
	s.Require().NoError(json.Unmarshal(body, &list))
	s.Equal(1, list.Total)
}

func (s *IntegrationTestSuite) TestClientIsolation() {
	coach := s.login(testCoachEmail, testCoachPassword)
	ana := s.createClient(coach.Token, "ana@example.com", "secret1")
	bob := s.createClient(coach.Token, "bob@example.com", "secret2")

	client := s.login("ana@example.com", "secret1")

	status, _ := s.do(http.MethodGet, "/clients", client.Token, nil)
	s.Equal(http.StatusForbidden, status)

	status, _ = s.do(http.MethodGet, "/clients/"+bob.ID+"/days/2024-03-06", client.Token, nil)
	s.Equal(http.StatusForbidden, status)

	status, _ = s.do(http.MethodGet, "/clients/"+ana.ID+"/days/2024-03-06", client.Token, nil)
	s.Equal(http.StatusOK, status)
}

func (s *IntegrationTestSuite) TestMessages() {
	coach := s.login(testCoachEmail, testCoachPassword)
	profile := s.createClient(coach.Token, "ana@example.com", "secret1")
	client := s.login("ana@example.com", "secret1")

	status, body := s.do(http.MethodPost, "/clients/"+profile.ID+"/messages", coach.Token,
		coaching.TextRequest{Text: "how was leg day?"})
	s.Require().Equal(http.StatusCreated, status, string(body))

	status, body = s.do(http.MethodGet, "/clients/"+profile.ID, client.Token, nil)
	s.Require().Equal(http.StatusOK, status)
	var got roster.ClientProfile
	s.Require().NoError(json.Unmarshal(body, &got))
	s.True(got.HasUnreadCoachMsg)

	status, body = s.do(http.MethodGet, "/clients/"+profile.ID+"/messages", client.Token, nil)
	s.Require().Equal(http.StatusOK, status)
	var messages coaching.MessagesResponse
	s.Require().NoError(json.Unmarshal(body, &messages))
	s.Require().Len(messages.Messages, 1)
	s.Equal("how was leg day?", messages.Messages[0].Text)
	s.True(messages.Messages[0].FromCoach())

	status, body = s.do(http.MethodGet, "/clients/"+profile.ID, client.Token, nil)
	s.Require().Equal(http.StatusOK, status)
	s.Require().NoError(json.Unmarshal(body, &got))
	s.False(got.HasUnreadCoachMsg)
}

func (s *IntegrationTestSuite) TestInactiveClientCannotSignIn() {
	coach := s.login(testCoachEmail, testCoachPassword)
	profile := s.createClient(coach.Token, "ana@example.com", "secret1")

	status, body := s.do(http.MethodPut, "/clients/"+profile.ID+"/status", coach.Token,
		roster.StatusUpdate{IsActive: false})
	s.Require().Equal(http.StatusOK, status, string(body))

	status, _ = s.do(http.MethodPost, "/auth/login", "", loginRequest{Email: "ana@example.com", Password: "secret1"})
	s.Equal(http.StatusForbidden, status)

	status, _ = s.do(http.MethodDelete, "/clients/"+profile.ID, coach.Token, nil)
	s.Equal(http.StatusOK, status)

	status, _ = s.do(http.MethodGet, "/clients/"+profile.ID, coach.Token, nil)
	s.Equal(http.StatusNotFound, status)
}
