package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"locallibrary/internal/model"
	"locallibrary/internal/policy"
)

func TestCreateInstance_DefaultsToMaintenance(t *testing.T) {
	app := newTestApp(t)

	app.seedUser(t, "librarian", policy.PermAddInstances)
	cookie := app.login(t, "librarian")

	author := app.seedAuthor(t, "Ursula", "Le Guin")
	lang := app.seedLanguage(t, "English")
	book := app.seedBook(t, author, lang, "The Dispossessed")

	w := app.do(t, http.MethodPost, "/catalog/bookinstances", map[string]any{
		"book_id": book.ID.String(),
		"imprint": "Harper & Row, 1974",
	}, cookie)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp InstanceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Data.Status != "Maintenance" {
		t.Errorf("expected status Maintenance, got %q", resp.Data.Status)
	}
	if resp.Data.Book != "The Dispossessed" {
		t.Errorf("expected book title expanded, got %q", resp.Data.Book)
	}
	if resp.Data.Borrower != nil {
		t.Errorf("expected null borrower, got %v", *resp.Data.Borrower)
	}
}

func TestCreateInstance_CannotStartOnLoan(t *testing.T) {
	app := newTestApp(t)

	app.seedUser(t, "librarian", policy.PermAddInstances)
	cookie := app.login(t, "librarian")

	author := app.seedAuthor(t, "Ursula", "Le Guin")
	lang := app.seedLanguage(t, "English")
	book := app.seedBook(t, author, lang, "The Dispossessed")

	w := app.do(t, http.MethodPost, "/catalog/bookinstances", map[string]any{
		"book_id": book.ID.String(),
		"imprint": "Harper & Row, 1974",
		"status":  "On loan",
	}, cookie)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d, body=%s", w.Code, w.Body.String())
	}
	if code := decodeError(t, w); code != "INVALID_STATUS" {
		t.Errorf("expected code INVALID_STATUS, got %q", code)
	}
}

func TestSelfCheckout_Success(t *testing.T) {
	app := newTestApp(t)

	app.seedUser(t, "reader")
	cookie := app.login(t, "reader")

	author := app.seedAuthor(t, "Ursula", "Le Guin")
	lang := app.seedLanguage(t, "English")
	book := app.seedBook(t, author, lang, "The Dispossessed")
	inst := app.seedInstance(t, book, model.StatusAvailable)

	w := app.do(t, http.MethodPost, "/catalog/bookinstances/"+inst.ID.String()+"/checkout", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp InstanceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Data.Status != "On loan" {
		t.Errorf("expected status On loan, got %q", resp.Data.Status)
	}
	if resp.Data.Borrower == nil || *resp.Data.Borrower != "reader" {
		t.Errorf("expected borrower reader, got %v", resp.Data.Borrower)
	}
	// Default loan period is three weeks from today.
	if resp.Data.DueBack == nil || resp.Data.DueBack.Format("2006-01-02") != "2026-03-31" {
		t.Errorf("expected due date 2026-03-31, got %v", resp.Data.DueBack)
	}

	var stored model.BookInstance
	if err := app.db.First(&stored, "id = ?", inst.ID).Error; err != nil {
		t.Fatalf("expected instance in db, got error: %v", err)
	}
	if stored.Status != model.StatusOnLoan {
		t.Errorf("expected stored status o, got %q", stored.Status)
	}
}

func TestSelfCheckout_IgnoresBodyOverrides(t *testing.T) {
	app := newTestApp(t)

	reader := app.seedUser(t, "reader")
	other := app.seedUser(t, "other")
	cookie := app.login(t, "reader")

	author := app.seedAuthor(t, "Ursula", "Le Guin")
	lang := app.seedLanguage(t, "English")
	book := app.seedBook(t, author, lang, "The Dispossessed")
	inst := app.seedInstance(t, book, model.StatusAvailable)

	// Whatever the client claims, the loan goes to the session's user
	// with the default due date.
	w := app.do(t, http.MethodPost, "/catalog/bookinstances/"+inst.ID.String()+"/checkout", map[string]any{
		"borrower_id": other.ID.String(),
		"due_back":    "2030-01-01",
		"status":      "Available",
	}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var stored model.BookInstance
	if err := app.db.First(&stored, "id = ?", inst.ID).Error; err != nil {
		t.Fatalf("expected instance in db, got error: %v", err)
	}
	if stored.BorrowerID == nil || *stored.BorrowerID != reader.ID {
		t.Errorf("expected borrower %s, got %v", reader.ID, stored.BorrowerID)
	}
	if stored.DueBack == nil || stored.DueBack.Format("2006-01-02") != "2026-03-31" {
		t.Errorf("expected due date 2026-03-31, got %v", stored.DueBack)
	}
}

func TestSelfCheckout_NotAvailable(t *testing.T) {
	app := newTestApp(t)

	app.seedUser(t, "reader")
	cookie := app.login(t, "reader")

	author := app.seedAuthor(t, "Ursula", "Le Guin")
	lang := app.seedLanguage(t, "English")
	book := app.seedBook(t, author, lang, "The Dispossessed")
	inst := app.seedInstance(t, book, model.StatusMaintenance)

	w := app.do(t, http.MethodPost, "/catalog/bookinstances/"+inst.ID.String()+"/checkout", nil, cookie)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d, body=%s", w.Code, w.Body.String())
	}
	if code := decodeError(t, w); code != "NOT_AVAILABLE" {
		t.Errorf("expected code NOT_AVAILABLE, got %q", code)
	}
}

func TestSelfCheckout_Anonymous(t *testing.T) {
	app := newTestApp(t)

	author := app.seedAuthor(t, "Ursula", "Le Guin")
	lang := app.seedLanguage(t, "English")
	book := app.seedBook(t, author, lang, "The Dispossessed")
	inst := app.seedInstance(t, book, model.StatusAvailable)

	w := app.do(t, http.MethodPost, "/catalog/bookinstances/"+inst.ID.String()+"/checkout", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestReturnInstance_ClearsLoanState(t *testing.T) {
	app := newTestApp(t)

	reader := app.seedUser(t, "reader")
	app.seedUser(t, "librarian", policy.PermEditInstances)
	cookie := app.login(t, "librarian")

	author := app.seedAuthor(t, "Ursula", "Le Guin")
	lang := app.seedLanguage(t, "English")
	book := app.seedBook(t, author, lang, "The Dispossessed")
	due := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	inst := app.seedLoan(t, book, reader, due)

	w := app.do(t, http.MethodPost, "/catalog/bookinstances/"+inst.ID.String()+"/return", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var stored model.BookInstance
	if err := app.db.First(&stored, "id = ?", inst.ID).Error; err != nil {
		t.Fatalf("expected instance in db, got error: %v", err)
	}
	if stored.Status != model.StatusAvailable {
		t.Errorf("expected status a after return, got %q", stored.Status)
	}
	if stored.BorrowerID != nil || stored.DueBack != nil {
		t.Errorf("expected loan state cleared, got borrower=%v due=%v", stored.BorrowerID, stored.DueBack)
	}
}

func TestReturnInstance_NotOnLoan(t *testing.T) {
	app := newTestApp(t)

	app.seedUser(t, "librarian", policy.PermEditInstances)
	cookie := app.login(t, "librarian")

	author := app.seedAuthor(t, "Ursula", "Le Guin")
	lang := app.seedLanguage(t, "English")
	book := app.seedBook(t, author, lang, "The Dispossessed")
	inst := app.seedInstance(t, book, model.StatusAvailable)

	w := app.do(t, http.MethodPost, "/catalog/bookinstances/"+inst.ID.String()+"/return", nil, cookie)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d, body=%s", w.Code, w.Body.String())
	}
	if code := decodeError(t, w); code != "NOT_ON_LOAN" {
		t.Errorf("expected code NOT_ON_LOAN, got %q", code)
	}
}

func TestWithdrawInstance_FromLoan(t *testing.T) {
	app := newTestApp(t)

	reader := app.seedUser(t, "reader")
	app.seedUser(t, "librarian", policy.PermEditInstances)
	cookie := app.login(t, "librarian")

	author := app.seedAuthor(t, "Ursula", "Le Guin")
	lang := app.seedLanguage(t, "English")
	book := app.seedBook(t, author, lang, "The Dispossessed")
	due := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	inst := app.seedLoan(t, book, reader, due)

	w := app.do(t, http.MethodPost, "/catalog/bookinstances/"+inst.ID.String()+"/withdraw", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var stored model.BookInstance
	if err := app.db.First(&stored, "id = ?", inst.ID).Error; err != nil {
		t.Fatalf("expected instance in db, got error: %v", err)
	}
	if stored.Status != model.StatusMaintenance {
		t.Errorf("expected status m after withdraw, got %q", stored.Status)
	}
	if stored.BorrowerID != nil || stored.DueBack != nil {
		t.Errorf("expected loan state cleared, got borrower=%v due=%v", stored.BorrowerID, stored.DueBack)
	}
}

func TestStaffUpdate_OnLoanRequiresBorrower(t *testing.T) {
	app := newTestApp(t)

	app.seedUser(t, "librarian", policy.PermEditInstances)
	cookie := app.login(t, "librarian")

	author := app.seedAuthor(t, "Ursula", "Le Guin")
	lang := app.seedLanguage(t, "English")
	book := app.seedBook(t, author, lang, "The Dispossessed")
	inst := app.seedInstance(t, book, model.StatusAvailable)

	w := app.do(t, http.MethodPatch, "/catalog/bookinstances/"+inst.ID.String()+"/staff", map[string]any{
		"status": "On loan",
	}, cookie)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d, body=%s", w.Code, w.Body.String())
	}
	if code := decodeError(t, w); code != "BORROWER_REQUIRED" {
		t.Errorf("expected code BORROWER_REQUIRED, got %q", code)
	}
}

func TestStaffUpdate_NonLoanClearsLoanState(t *testing.T) {
	app := newTestApp(t)

	reader := app.seedUser(t, "reader")
	app.seedUser(t, "librarian", policy.PermEditInstances)
	cookie := app.login(t, "librarian")

	author := app.seedAuthor(t, "Ursula", "Le Guin")
	lang := app.seedLanguage(t, "English")
	book := app.seedBook(t, author, lang, "The Dispossessed")
	due := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	inst := app.seedLoan(t, book, reader, due)

	w := app.do(t, http.MethodPatch, "/catalog/bookinstances/"+inst.ID.String()+"/staff", map[string]any{
		"status": "a",
	}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var stored model.BookInstance
	if err := app.db.First(&stored, "id = ?", inst.ID).Error; err != nil {
		t.Fatalf("expected instance in db, got error: %v", err)
	}
	if stored.Status != model.StatusAvailable {
		t.Errorf("expected status a, got %q", stored.Status)
	}
	if stored.BorrowerID != nil || stored.DueBack != nil {
		t.Errorf("expected loan state cleared, got borrower=%v due=%v", stored.BorrowerID, stored.DueBack)
	}
}

func TestStaffUpdate_AcceptsOverdueDate(t *testing.T) {
	app := newTestApp(t)

	reader := app.seedUser(t, "reader")
	app.seedUser(t, "librarian", policy.PermEditInstances)
	cookie := app.login(t, "librarian")

	author := app.seedAuthor(t, "Ursula", "Le Guin")
	lang := app.seedLanguage(t, "English")
	book := app.seedBook(t, author, lang, "The Dispossessed")
	due := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	inst := app.seedLoan(t, book, reader, due)

	// Staff can backdate a due date to record an already overdue loan.
	w := app.do(t, http.MethodPatch, "/catalog/bookinstances/"+inst.ID.String()+"/staff", map[string]any{
		"due_back": "2026-02-01",
	}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var stored model.BookInstance
	if err := app.db.First(&stored, "id = ?", inst.ID).Error; err != nil {
		t.Fatalf("expected instance in db, got error: %v", err)
	}
	if stored.DueBack == nil || stored.DueBack.Format("2006-01-02") != "2026-02-01" {
		t.Errorf("expected due date 2026-02-01, got %v", stored.DueBack)
	}
}

func TestStaffUpdate_DueTooFarAhead(t *testing.T) {
	app := newTestApp(t)

	reader := app.seedUser(t, "reader")
	app.seedUser(t, "librarian", policy.PermEditInstances)
	cookie := app.login(t, "librarian")

	author := app.seedAuthor(t, "Ursula", "Le Guin")
	lang := app.seedLanguage(t, "English")
	book := app.seedBook(t, author, lang, "The Dispossessed")
	due := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	inst := app.seedLoan(t, book, reader, due)

	w := app.do(t, http.MethodPatch, "/catalog/bookinstances/"+inst.ID.String()+"/staff", map[string]any{
		"due_back": "2026-04-08",
	}, cookie)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d, body=%s", w.Code, w.Body.String())
	}
	if code := decodeError(t, w); code != "INVALID_DATE_RANGE" {
		t.Errorf("expected code INVALID_DATE_RANGE, got %q", code)
	}
}

func TestProposeRenewal_DefaultDueDate(t *testing.T) {
	app := newTestApp(t)

	reader := app.seedUser(t, "reader")
	app.seedUser(t, "librarian", policy.PermRenewLoans)
	cookie := app.login(t, "librarian")

	author := app.seedAuthor(t, "Ursula", "Le Guin")
	lang := app.seedLanguage(t, "English")
	book := app.seedBook(t, author, lang, "The Dispossessed")
	due := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	inst := app.seedLoan(t, book, reader, due)

	w := app.do(t, http.MethodGet, "/catalog/bookinstances/"+inst.ID.String()+"/renew", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp RenewProposalResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if got := resp.Data.ProposedDueBack.Format("2006-01-02"); got != "2026-03-31" {
		t.Errorf("expected proposed due date 2026-03-31, got %s", got)
	}
	if resp.Data.Instance.ID != inst.ID {
		t.Errorf("expected instance %s in proposal, got %s", inst.ID, resp.Data.Instance.ID)
	}
}

func TestRenewInstance_Window(t *testing.T) {
	app := newTestApp(t)

	reader := app.seedUser(t, "reader")
	app.seedUser(t, "librarian", policy.PermRenewLoans)
	cookie := app.login(t, "librarian")

	author := app.seedAuthor(t, "Ursula", "Le Guin")
	lang := app.seedLanguage(t, "English")
	book := app.seedBook(t, author, lang, "The Dispossessed")
	due := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	inst := app.seedLoan(t, book, reader, due)

	path := "/catalog/bookinstances/" + inst.ID.String() + "/renew"

	tests := []struct {
		name     string
		dueBack  string
		wantCode int
		wantErr  string
	}{
		{"yesterday rejected", "2026-03-09", http.StatusBadRequest, "INVALID_RENEWAL_DATE"},
		{"beyond four weeks rejected", "2026-04-08", http.StatusBadRequest, "INVALID_DATE_RANGE"},
		{"today allowed", "2026-03-10", http.StatusOK, ""},
		{"four week boundary allowed", "2026-04-07", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(t, http.MethodPost, path, map[string]any{"due_back": tt.dueBack}, cookie)
			if w.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d, body=%s", tt.wantCode, w.Code, w.Body.String())
			}
			if tt.wantErr != "" {
				if code := decodeError(t, w); code != tt.wantErr {
					t.Errorf("expected code %s, got %q", tt.wantErr, code)
				}
			}
		})
	}

	var stored model.BookInstance
	if err := app.db.First(&stored, "id = ?", inst.ID).Error; err != nil {
		t.Fatalf("expected instance in db, got error: %v", err)
	}
	if stored.Status != model.StatusOnLoan {
		t.Errorf("expected renewal to keep the copy on loan, got %q", stored.Status)
	}
	if stored.BorrowerID == nil || *stored.BorrowerID != reader.ID {
		t.Errorf("expected renewal to keep the borrower, got %v", stored.BorrowerID)
	}
	if stored.DueBack == nil || stored.DueBack.Format("2006-01-02") != "2026-04-07" {
		t.Errorf("expected due date 2026-04-07, got %v", stored.DueBack)
	}
}

func TestRenewInstance_NotOnLoan(t *testing.T) {
	app := newTestApp(t)

	app.seedUser(t, "librarian", policy.PermRenewLoans)
	cookie := app.login(t, "librarian")

	author := app.seedAuthor(t, "Ursula", "Le Guin")
	lang := app.seedLanguage(t, "English")
	book := app.seedBook(t, author, lang, "The Dispossessed")
	inst := app.seedInstance(t, book, model.StatusAvailable)

	w := app.do(t, http.MethodPost, "/catalog/bookinstances/"+inst.ID.String()+"/renew", map[string]any{
		"due_back": "2026-03-20",
	}, cookie)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d, body=%s", w.Code, w.Body.String())
	}
	if code := decodeError(t, w); code != "NOT_ON_LOAN" {
		t.Errorf("expected code NOT_ON_LOAN, got %q", code)
	}
}

func TestRenewInstance_WithoutPermission(t *testing.T) {
	app := newTestApp(t)

	reader := app.seedUser(t, "reader")
	cookie := app.login(t, "reader")

	author := app.seedAuthor(t, "Ursula", "Le Guin")
	lang := app.seedLanguage(t, "English")
	book := app.seedBook(t, author, lang, "The Dispossessed")
	due := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	inst := app.seedLoan(t, book, reader, due)

	w := app.do(t, http.MethodPost, "/catalog/bookinstances/"+inst.ID.String()+"/renew", map[string]any{
		"due_back": "2026-03-20",
	}, cookie)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d, body=%s", w.Code, w.Body.String())
	}
}
