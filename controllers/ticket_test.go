package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carwash-backend/models"
	"carwash-backend/routes"
	"carwash-backend/store"
	"carwash-backend/store/memstore"
	"carwash-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newTestServer(t *testing.T) (*gin.Engine, *memstore.Store) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)
	st := memstore.New()
	return routes.SetupRouter(st, nil), st
}

func seedShop(st *memstore.Store) models.Shop {
	shop := models.Shop{
		ID:            uuid.New(),
		Name:          "Sparkle Wash",
		Address:       "1 Suds Lane",
		ManagerUserID: uuid.New(),
		CreatedAt:     time.Now(),
	}
	st.AddShop(shop)
	return shop
}

func adminToken(t *testing.T, shopID uuid.UUID) string {
	t.Helper()
	token, err := utils.GenerateToken(uuid.NewString(), models.RoleAdmin, "admin@shop.test", shopID.String())
	if err != nil {
		t.Fatalf("admin token: %v", err)
	}
	return token
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateTicket(t *testing.T) {
	r, st := newTestServer(t)
	shop := seedShop(st)

	// Missing shopId
	w := doJSON(r, http.MethodPost, "/api/tickets", "", gin.H{"customerName": "Ana"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing shopId: status %d, want 400", w.Code)
	}

	// Unknown shop
	w = doJSON(r, http.MethodPost, "/api/tickets", "", gin.H{"shopId": uuid.NewString()})
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown shop: status %d, want 404", w.Code)
	}

	// Bad phone
	w = doJSON(r, http.MethodPost, "/api/tickets", "", gin.H{"shopId": shop.ID.String(), "phone": "bogus"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad phone: status %d, want 400", w.Code)
	}

	// Anonymous walk-in
	w = doJSON(r, http.MethodPost, "/api/tickets", "", gin.H{"shopId": shop.ID.String(), "vehicleNumber": "KA-01-1234"})
	if w.Code != http.StatusCreated {
		t.Fatalf("walk-in: status %d, want 201 (%s)", w.Code, w.Body.String())
	}
	var ticket models.Ticket
	if err := json.Unmarshal(w.Body.Bytes(), &ticket); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ticket.Number != 1 {
		t.Fatalf("first ticket numbered %d, want 1", ticket.Number)
	}
	if ticket.CustomerName != "Guest" {
		t.Fatalf("walk-in customerName = %q, want Guest", ticket.CustomerName)
	}
	if ticket.CreatedByUserID != nil {
		t.Fatalf("walk-in has createdByUserId %v", ticket.CreatedByUserID)
	}
	if ticket.Status != models.StatusWaiting {
		t.Fatalf("new ticket status %q, want WAITING", ticket.Status)
	}
}

func TestCreateTicketWithBearerIdentity(t *testing.T) {
	r, st := newTestServer(t)
	shop := seedShop(st)

	userID := uuid.New()
	token, err := utils.GenerateToken(userID.String(), models.RoleCustomer, "driver@x.test", "")
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	w := doJSON(r, http.MethodPost, "/api/tickets", token, gin.H{"shopId": shop.ID.String()})
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d, want 201 (%s)", w.Code, w.Body.String())
	}
	var ticket models.Ticket
	if err := json.Unmarshal(w.Body.Bytes(), &ticket); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ticket.CreatedByUserID == nil || *ticket.CreatedByUserID != userID {
		t.Fatalf("createdByUserId = %v, want %s", ticket.CreatedByUserID, userID)
	}
	if ticket.CustomerName != "driver@x.test" {
		t.Fatalf("customerName = %q, want the creator's email", ticket.CustomerName)
	}
}

// seedQueue creates four tickets in a known mid-day state:
// 1 COMPLETED, 2 WAITING, 3 IN_SERVICE, 4 WAITING.
func seedQueue(t *testing.T, st *memstore.Store, shopID uuid.UUID) []models.Ticket {
	t.Helper()
	ctx := context.Background()
	day := utils.Today()

	tickets := make([]models.Ticket, 0, 4)
	for i := 0; i < 4; i++ {
		ticket, err := st.CreateTicket(ctx, store.CreateTicketInput{
			ShopID: shopID, Day: day, CreatedAt: time.Now(),
		})
		if err != nil {
			t.Fatalf("seed ticket %d: %v", i+1, err)
		}
		tickets = append(tickets, ticket)
	}

	inService := models.StatusInService
	completed := models.StatusCompleted
	for _, status := range []*string{&inService, &completed} {
		if _, _, err := st.UpdateTicket(ctx, store.UpdateTicketInput{
			TicketID: tickets[0].ID, Status: status, Now: time.Now(),
		}); err != nil {
			t.Fatalf("finish ticket 1: %v", err)
		}
	}
	if _, _, err := st.UpdateTicket(ctx, store.UpdateTicketInput{
		TicketID: tickets[2].ID, Status: &inService, Now: time.Now(),
	}); err != nil {
		t.Fatalf("start ticket 3: %v", err)
	}
	return tickets
}

func TestGetQueue(t *testing.T) {
	r, st := newTestServer(t)
	shop := seedShop(st)
	seedQueue(t, st, shop.ID)

	w := doJSON(r, http.MethodGet, "/api/queue", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing shopId: status %d, want 400", w.Code)
	}

	w = doJSON(r, http.MethodGet, "/api/queue?shopId="+shop.ID.String(), "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200 (%s)", w.Code, w.Body.String())
	}

	var resp struct {
		Tickets               []models.Ticket `json:"tickets"`
		WaitingCount          int             `json:"waitingCount"`
		CurrentInServiceToken *int            `json:"currentInServiceToken"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	var waiting []int
	for _, ticket := range resp.Tickets {
		if ticket.Status == models.StatusWaiting {
			waiting = append(waiting, ticket.Number)
		}
	}
	if len(waiting) != 2 || waiting[0] != 2 || waiting[1] != 4 {
		t.Fatalf("waiting numbers = %v, want [2 4]", waiting)
	}
	if resp.WaitingCount != 3 {
		t.Fatalf("waitingCount = %d, want 3", resp.WaitingCount)
	}
	if resp.CurrentInServiceToken == nil || *resp.CurrentInServiceToken != 3 {
		t.Fatalf("currentInServiceToken = %v, want 3", resp.CurrentInServiceToken)
	}
}

func TestUpdateTicketStatusOwnership(t *testing.T) {
	r, st := newTestServer(t)
	shopA := seedShop(st)
	shopB := models.Shop{ID: uuid.New(), Name: "Rival Wash", Address: "2 Foam St", ManagerUserID: uuid.New(), CreatedAt: time.Now()}
	st.AddShop(shopB)

	ticketB, err := st.CreateTicket(context.Background(), store.CreateTicketInput{
		ShopID: shopB.ID, Day: utils.Today(), CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	path := fmt.Sprintf("/api/tickets/%s/status", ticketB.ID)
	body := gin.H{"status": models.StatusInService}

	// Admin of shop A cannot touch shop B's ticket.
	w := doJSON(r, http.MethodPatch, path, adminToken(t, shopA.ID), body)
	if w.Code != http.StatusForbidden {
		t.Fatalf("cross-shop patch: status %d, want 403", w.Code)
	}

	// Customers cannot transition tickets at all.
	customer, err := utils.GenerateToken(uuid.NewString(), models.RoleCustomer, "c@x.test", "")
	if err != nil {
		t.Fatalf("customer token: %v", err)
	}
	w = doJSON(r, http.MethodPatch, path, customer, body)
	if w.Code != http.StatusForbidden {
		t.Fatalf("customer patch: status %d, want 403", w.Code)
	}

	// Anonymous callers are rejected before the handler runs.
	w = doJSON(r, http.MethodPatch, path, "", body)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous patch: status %d, want 401", w.Code)
	}

	// The owning admin succeeds.
	w = doJSON(r, http.MethodPatch, path, adminToken(t, shopB.ID), body)
	if w.Code != http.StatusOK {
		t.Fatalf("owner patch: status %d, want 200 (%s)", w.Code, w.Body.String())
	}
}

func TestUpdateTicketStatusGuard(t *testing.T) {
	r, st := newTestServer(t)
	shop := seedShop(st)
	token := adminToken(t, shop.ID)

	ticket, err := st.CreateTicket(context.Background(), store.CreateTicketInput{
		ShopID: shop.ID, Day: utils.Today(), CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	path := fmt.Sprintf("/api/tickets/%s/status", ticket.ID)

	// WAITING -> COMPLETED must pass through IN_SERVICE.
	w := doJSON(r, http.MethodPatch, path, token, gin.H{"status": models.StatusCompleted})
	if w.Code != http.StatusConflict {
		t.Fatalf("skip IN_SERVICE: status %d, want 409", w.Code)
	}

	w = doJSON(r, http.MethodPatch, path, token, gin.H{"status": models.StatusInService, "serviceBay": "Bay 1"})
	if w.Code != http.StatusOK {
		t.Fatalf("start: status %d, want 200 (%s)", w.Code, w.Body.String())
	}
	var started models.Ticket
	if err := json.Unmarshal(w.Body.Bytes(), &started); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if started.StartedAt == nil {
		t.Fatal("startedAt not set on IN_SERVICE")
	}
	if started.ServiceBay == nil || *started.ServiceBay != "Bay 1" {
		t.Fatalf("serviceBay = %v, want Bay 1", started.ServiceBay)
	}

	w = doJSON(r, http.MethodPatch, path, token, gin.H{"status": models.StatusCompleted})
	if w.Code != http.StatusOK {
		t.Fatalf("complete: status %d, want 200", w.Code)
	}

	// Terminal: no way back.
	w = doJSON(r, http.MethodPatch, path, token, gin.H{"status": models.StatusWaiting})
	if w.Code != http.StatusConflict {
		t.Fatalf("COMPLETED -> WAITING: status %d, want 409", w.Code)
	}

	// Terminal tickets reject bay-only patches too.
	w = doJSON(r, http.MethodPatch, path, token, gin.H{"serviceBay": "Bay 9"})
	if w.Code != http.StatusConflict {
		t.Fatalf("bay patch on COMPLETED ticket: status %d, want 409", w.Code)
	}
}

func TestListTicketsScopedToAdminShop(t *testing.T) {
	r, st := newTestServer(t)
	shop := seedShop(st)
	other := models.Shop{ID: uuid.New(), Name: "Other", Address: "x", ManagerUserID: uuid.New(), CreatedAt: time.Now()}
	st.AddShop(other)

	ctx := context.Background()
	day := utils.Today()
	if _, err := st.CreateTicket(ctx, store.CreateTicketInput{ShopID: shop.ID, Day: day, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("seed own: %v", err)
	}
	if _, err := st.CreateTicket(ctx, store.CreateTicketInput{ShopID: other.ID, Day: day, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("seed other: %v", err)
	}

	w := doJSON(r, http.MethodGet, "/api/tickets?status=WAITING", adminToken(t, shop.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200 (%s)", w.Code, w.Body.String())
	}
	var tickets []models.Ticket
	if err := json.Unmarshal(w.Body.Bytes(), &tickets); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tickets) != 1 || tickets[0].ShopID != shop.ID {
		t.Fatalf("expected only the admin's own ticket, got %v", tickets)
	}

	w = doJSON(r, http.MethodGet, "/api/tickets?status=SOAPY", adminToken(t, shop.ID), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad filter: status %d, want 400", w.Code)
	}
}

func TestDeleteTicket(t *testing.T) {
	r, st := newTestServer(t)
	shop := seedShop(st)
	token := adminToken(t, shop.ID)

	ticket, err := st.CreateTicket(context.Background(), store.CreateTicketInput{
		ShopID: shop.ID, Day: utils.Today(), CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := doJSON(r, http.MethodDelete, "/api/tickets/"+ticket.ID.String(), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status %d, want 200", w.Code)
	}

	w = doJSON(r, http.MethodDelete, "/api/tickets/"+ticket.ID.String(), token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("delete again: status %d, want 404", w.Code)
	}
}
