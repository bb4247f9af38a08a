package reservation_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/HloniTshele/Richfield-library-BackEnd/internal/auth"
	"github.com/HloniTshele/Richfield-library-BackEnd/internal/book"
	"github.com/HloniTshele/Richfield-library-BackEnd/internal/loan"
	"github.com/HloniTshele/Richfield-library-BackEnd/internal/metrics"
	"github.com/HloniTshele/Richfield-library-BackEnd/internal/reservation"
	"github.com/HloniTshele/Richfield-library-BackEnd/internal/user"
	"github.com/HloniTshele/Richfield-library-BackEnd/testing/testdb"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func seedUser(t *testing.T, db *bun.DB, userID, name, email string) {
	t.Helper()
	u := &user.User{
		UserID:           userID,
		Name:             name,
		Email:            email,
		Password:         "x",
		Role:             "student",
		RegistrationDate: time.Now(),
	}
	_, err := db.NewInsert().Model(u).Exec(context.Background())
	require.NoError(t, err)
}

func seedBook(t *testing.T, db *bun.DB, bookID, title, status string, copies int) {
	t.Helper()
	b := &book.Book{
		BookID:          bookID,
		Title:           title,
		Author:          "Author",
		ISBN:            "978-0000000000",
		Category:        "IT",
		Status:          status,
		AvailableCopies: copies,
	}
	_, err := db.NewInsert().Model(b).Exec(context.Background())
	require.NoError(t, err)
}

func seedReservation(t *testing.T, db *bun.DB, id, userID, bookID, status string, reservedAt time.Time) {
	t.Helper()
	r := &reservation.Reservation{
		ReservationID:   id,
		UserID:          userID,
		BookID:          bookID,
		ReservationDate: reservedAt,
		ExpiryDate:      reservedAt.AddDate(0, 0, 7),
		Status:          status,
		CreatedAt:       reservedAt,
	}
	_, err := db.NewInsert().Model(r).Exec(context.Background())
	require.NoError(t, err)
}

func countLoans(t *testing.T, db *bun.DB) int {
	t.Helper()
	count, err := db.NewSelect().Model((*loan.Loan)(nil)).Count(context.Background())
	require.NoError(t, err)
	return count
}

func getBook(t *testing.T, db *bun.DB, bookID string) *book.Book {
	t.Helper()
	b := new(book.Book)
	err := db.NewSelect().Model(b).Where("book_id = ?", bookID).Scan(context.Background())
	require.NoError(t, err)
	return b
}

func getReservation(t *testing.T, db *bun.DB, id string) *reservation.Reservation {
	t.Helper()
	r := new(reservation.Reservation)
	err := db.NewSelect().Model(r).Where("reservation_id = ?", id).Scan(context.Background())
	require.NoError(t, err)
	return r
}

func patchStatus(router chi.Router, token, reservationID, status string) *httptest.ResponseRecorder {
	payload := map[string]string{}
	if reservationID != "" {
		payload["reservation_id"] = reservationID
	}
	if status != "" {
		payload["status"] = status
	}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPatch, "/reservations/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestReservationHandler_Shared(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	pgContainer.RunMigrations(t,
		(*user.User)(nil),
		(*book.Book)(nil),
		(*reservation.Reservation)(nil),
		(*loan.Loan)(nil),
	)

	db := pgContainer.DB
	ctx := context.Background()

	mockMetrics := metrics.NewMock()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	service := reservation.NewService(db, nil, logger, mockMetrics)
	handler := reservation.NewHandler(service, logger, mockMetrics)

	// Routes are mounted behind the JWT guard exactly as the app wires them
	t.Setenv("JWT_SECRET", "handler-test-secret")
	token, err := auth.GenerateAccessToken("L00000001", "librarian@example.com", "librarian")
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(logger))
		handler.RegisterRoutes(r)
	})

	cleanup := func() {
		testdb.CleanupTables(t, db, "users", "books", "reservations", "loans")
	}

	t.Run("Confirm_AvailableBook_CreatesLoan", func(t *testing.T) {
		cleanup()
		seedUser(t, db, "S11111111", "Thabo M", "thabo@example.com")
		seedBook(t, db, "B1", "Clean Code", book.StatusAvailable, 1)
		seedReservation(t, db, "R1", "S11111111", "B1", reservation.StatusPending, time.Now())

		w := patchStatus(router, token, "R1", "confirmed")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp reservation.StatusResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "Reservation confirmed successfully", resp.Message)

		assert.Equal(t, reservation.StatusConfirmed, getReservation(t, db, "R1").Status)

		// Exactly one loan, due three days after the loan date
		var loans []loan.Loan
		require.NoError(t, db.NewSelect().Model(&loans).Scan(ctx))
		require.Len(t, loans, 1)
		l := loans[0]
		assert.Equal(t, "S11111111", l.UserID)
		assert.Equal(t, "B1", l.BookID)
		assert.Equal(t, loan.StatusActive, l.Status)
		assert.WithinDuration(t, l.LoanDate.AddDate(0, 0, 3), l.DueDate, time.Second)

		b := getBook(t, db, "B1")
		assert.Equal(t, book.StatusBorrowed, b.Status)
		assert.Equal(t, 0, b.AvailableCopies)
	})

	t.Run("NoToken_Unauthorized", func(t *testing.T) {
		cleanup()
		seedUser(t, db, "S10101010", "Thandi N", "thandi@example.com")
		seedBook(t, db, "B10", "Clean Architecture", book.StatusAvailable, 1)
		seedReservation(t, db, "R10", "S10101010", "B10", reservation.StatusPending, time.Now())

		w := patchStatus(router, "", "R10", "confirmed")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "unauthorized")

		// Rejected at the door, nothing written
		assert.Equal(t, reservation.StatusPending, getReservation(t, db, "R10").Status)
		assert.Equal(t, 0, countLoans(t, db))
	})

	t.Run("InvalidToken_Unauthorized", func(t *testing.T) {
		cleanup()

		w := patchStatus(router, "not-a-jwt", "R10", "confirmed")
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		req := httptest.NewRequest(http.MethodGet, "/reservations", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Confirm_UnavailableBook_NoLoan", func(t *testing.T) {
		cleanup()
		seedUser(t, db, "S22222222", "Lerato K", "lerato@example.com")
		seedBook(t, db, "B2", "The Go Programming Language", book.StatusBorrowed, 2)
		seedReservation(t, db, "R2", "S22222222", "B2", reservation.StatusPending, time.Now())

		w := patchStatus(router, token, "R2", "confirmed")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		assert.Equal(t, reservation.StatusConfirmed, getReservation(t, db, "R2").Status)
		assert.Equal(t, 0, countLoans(t, db))

		// Book untouched
		b := getBook(t, db, "B2")
		assert.Equal(t, book.StatusBorrowed, b.Status)
		assert.Equal(t, 2, b.AvailableCopies)
	})

	t.Run("Confirm_MissingBook_NoLoan", func(t *testing.T) {
		cleanup()
		seedUser(t, db, "S33333333", "Sipho D", "sipho@example.com")
		seedReservation(t, db, "R3", "S33333333", "GHOST", reservation.StatusPending, time.Now())

		w := patchStatus(router, token, "R3", "confirmed")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		assert.Equal(t, reservation.StatusConfirmed, getReservation(t, db, "R3").Status)
		assert.Equal(t, 0, countLoans(t, db))
	})

	t.Run("Confirm_ZeroCopies_ClampsAtZero", func(t *testing.T) {
		cleanup()
		seedUser(t, db, "S44444444", "Ayanda P", "ayanda@example.com")
		seedBook(t, db, "B4", "SICP", book.StatusAvailable, 0)
		seedReservation(t, db, "R4", "S44444444", "B4", reservation.StatusPending, time.Now())

		w := patchStatus(router, token, "R4", "confirmed")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		// Status is what gates loan creation; copies never go negative
		assert.Equal(t, 1, countLoans(t, db))
		b := getBook(t, db, "B4")
		assert.Equal(t, book.StatusBorrowed, b.Status)
		assert.Equal(t, 0, b.AvailableCopies)
	})

	t.Run("Cancel_DoesNotTouchBookOrLoans", func(t *testing.T) {
		cleanup()
		seedUser(t, db, "S55555555", "Nandi S", "nandi@example.com")
		seedBook(t, db, "B5", "TAOCP", book.StatusAvailable, 3)
		seedReservation(t, db, "R5", "S55555555", "B5", reservation.StatusPending, time.Now())

		w := patchStatus(router, token, "R5", "cancelled")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		assert.Equal(t, reservation.StatusCancelled, getReservation(t, db, "R5").Status)
		assert.Equal(t, 0, countLoans(t, db))
		assert.Equal(t, 3, getBook(t, db, "B5").AvailableCopies)
	})

	t.Run("UpdateStatus_NotFound", func(t *testing.T) {
		cleanup()

		w := patchStatus(router, token, "NOPE", "confirmed")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Reservation not found")
	})

	t.Run("UpdateStatus_InvalidStatus", func(t *testing.T) {
		cleanup()
		seedUser(t, db, "S66666666", "Zanele T", "zanele@example.com")
		seedBook(t, db, "B6", "Refactoring", book.StatusAvailable, 1)
		seedReservation(t, db, "R6", "S66666666", "B6", reservation.StatusPending, time.Now())

		w := patchStatus(router, token, "R6", "archived")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid status")

		// Rejected before any write
		assert.Equal(t, reservation.StatusPending, getReservation(t, db, "R6").Status)
	})

	t.Run("UpdateStatus_MissingFields", func(t *testing.T) {
		w := patchStatus(router, token, "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "reservation_id and status are required")
	})

	t.Run("Delete_Success", func(t *testing.T) {
		cleanup()
		seedUser(t, db, "S77777777", "Bongani M", "bongani@example.com")
		seedReservation(t, db, "R7", "S77777777", "B7", reservation.StatusPending, time.Now())

		body, _ := json.Marshal(map[string]string{"reservation_id": "R7"})
		req := httptest.NewRequest(http.MethodDelete, "/reservations", bytes.NewReader(body))
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), "Reservation deleted successfully")

		count, err := db.NewSelect().Model((*reservation.Reservation)(nil)).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("Delete_NotFound", func(t *testing.T) {
		cleanup()

		body, _ := json.Marshal(map[string]string{"reservation_id": "NOPE"})
		req := httptest.NewRequest(http.MethodDelete, "/reservations", bytes.NewReader(body))
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Delete_MissingID", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{})
		req := httptest.NewRequest(http.MethodDelete, "/reservations", bytes.NewReader(body))
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "reservation_id is required")
	})

	t.Run("List_AllNewestFirst", func(t *testing.T) {
		cleanup()
		seedUser(t, db, "S88888888", "Kagiso R", "kagiso@example.com")
		seedBook(t, db, "B8", "Domain-Driven Design", book.StatusAvailable, 1)
		older := time.Now().Add(-48 * time.Hour)
		newer := time.Now().Add(-1 * time.Hour)
		seedReservation(t, db, "R8a", "S88888888", "B8", reservation.StatusPending, older)
		seedReservation(t, db, "R8b", "S88888888", "B8", reservation.StatusConfirmed, newer)

		// Bearer tokens are accepted as an alternative to the cookie
		req := httptest.NewRequest(http.MethodGet, "/reservations", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp reservation.ListResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.True(t, resp.Success)
		assert.Equal(t, 2, resp.Count)
		require.Len(t, resp.Reservations, 2)

		// Newest first, joined projections populated
		assert.Equal(t, "R8b", resp.Reservations[0].ReservationID)
		assert.Equal(t, "R8a", resp.Reservations[1].ReservationID)
		assert.Equal(t, "Kagiso R", resp.Reservations[0].UserName)
		assert.Equal(t, "Domain-Driven Design", resp.Reservations[0].BookTitle)
	})

	t.Run("List_PendingOldestFirst", func(t *testing.T) {
		cleanup()
		seedUser(t, db, "S99999999", "Mpho L", "mpho@example.com")
		seedBook(t, db, "B9", "The Mythical Man-Month", book.StatusAvailable, 1)
		older := time.Now().Add(-48 * time.Hour)
		newer := time.Now().Add(-1 * time.Hour)
		seedReservation(t, db, "R9a", "S99999999", "B9", reservation.StatusPending, newer)
		seedReservation(t, db, "R9b", "S99999999", "B9", reservation.StatusPending, older)
		seedReservation(t, db, "R9c", "S99999999", "B9", reservation.StatusCancelled, older)

		req := httptest.NewRequest(http.MethodGet, "/reservations?status=pending", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp reservation.ListResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, 2, resp.Count)
		require.Len(t, resp.Reservations, 2)
		assert.Equal(t, "R9b", resp.Reservations[0].ReservationID)
		assert.Equal(t, "R9a", resp.Reservations[1].ReservationID)
		for _, d := range resp.Reservations {
			assert.Equal(t, reservation.StatusPending, d.Status)
		}
	})
}
