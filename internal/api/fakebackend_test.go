package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type backendUser struct {
	id       int
	name     string
	password string
	balance  decimal.Decimal
}

type backendTx struct {
	ID        int             `json:"id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	ToEmail   string          `json:"toEmail,omitempty"`
	FromEmail string          `json:"fromEmail,omitempty"`
	Timestamp string          `json:"timestamp"`
	owner     string
}

// fakeBackend is an in-memory stand-in for the wallet service API.
type fakeBackend struct {
	mu     sync.Mutex
	users  map[string]*backendUser
	tokens map[string]string
	txs    []backendTx
	calls  map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		users:  make(map[string]*backendUser),
		tokens: make(map[string]string),
		calls:  make(map[string]int),
	}
}

func (b *fakeBackend) addUser(name, email, password, balance string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[email] = &backendUser{id: len(b.users) + 1, name: name, password: password, balance: decimal.RequireFromString(balance)}
}

func (b *fakeBackend) revokeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = make(map[string]string)
}

func (b *fakeBackend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	path := strings.TrimPrefix(r.URL.Path, "/api")
	b.calls[path]++

	switch path {
	case "/auth/login":
		var req struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		u, ok := b.users[req.Email]
		if !ok || u.password != req.Password {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid email or password"})
			return
		}
		token := "tok-" + strconv.Itoa(len(b.tokens)+1) + "-" + req.Email
		b.tokens[token] = req.Email
		writeJSON(w, http.StatusOK, map[string]any{"token": "Bearer " + token})

	case "/auth/register":
		var req struct{ Name, Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		if _, exists := b.users[req.Email]; exists {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Email already registered"})
			return
		}
		b.users[req.Email] = &backendUser{id: len(b.users) + 1, name: req.Name, password: req.Password}
		writeJSON(w, http.StatusOK, map[string]any{"id": len(b.users), "name": req.Name, "email": req.Email, "balance": 0})

	case "/users/me":
		email, ok := b.auth(w, r)
		if !ok {
			return
		}
		u := b.users[email]
		writeJSON(w, http.StatusOK, map[string]any{"id": u.id, "name": u.name, "email": email, "balance": u.balance})

	case "/wallet/add":
		email, ok := b.auth(w, r)
		if !ok {
			return
		}
		var req struct{ Amount decimal.Decimal }
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.users[email].balance = b.users[email].balance.Add(req.Amount)
		b.record(backendTx{Type: "ADD", Amount: req.Amount, owner: email})
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "balance": b.users[email].balance})

	case "/wallet/transfer":
		email, ok := b.auth(w, r)
		if !ok {
			return
		}
		var req struct {
			ToEmail string          `json:"toEmail"`
			Amount  decimal.Decimal `json:"amount"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		to, exists := b.users[req.ToEmail]
		if !exists {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "Recipient not found"})
			return
		}
		from := b.users[email]
		if from.balance.LessThan(req.Amount) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Insufficient balance"})
			return
		}
		from.balance = from.balance.Sub(req.Amount)
		to.balance = to.balance.Add(req.Amount)
		b.record(backendTx{Type: "SEND", Amount: req.Amount, ToEmail: req.ToEmail, FromEmail: email, owner: email})
		b.record(backendTx{Type: "RECEIVE", Amount: req.Amount, ToEmail: req.ToEmail, FromEmail: email, owner: req.ToEmail})
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "balance": from.balance})

	case "/wallet/transactions":
		email, ok := b.auth(w, r)
		if !ok {
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("size"))
		var mine []backendTx
		for i := len(b.txs) - 1; i >= 0; i-- {
			if b.txs[i].owner == email {
				mine = append(mine, b.txs[i])
			}
		}
		totalPages := (len(mine) + size - 1) / size
		start := min(page*size, len(mine))
		end := min(start+size, len(mine))
		writeJSON(w, http.StatusOK, map[string]any{
			"content":       mine[start:end],
			"number":        page,
			"size":          size,
			"totalPages":    totalPages,
			"totalElements": len(mine),
		})

	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "no route"})
	}
}

func (b *fakeBackend) auth(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	email, ok := b.tokens[token]
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
		return "", false
	}
	return email, true
}

func (b *fakeBackend) record(tx backendTx) {
	tx.ID = len(b.txs) + 1
	tx.Timestamp = time.Date(2024, 5, 1, 10, 0, tx.ID, 0, time.UTC).Format("2006-01-02T15:04:05")
	b.txs = append(b.txs, tx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
