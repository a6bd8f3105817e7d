package workflow

import (
	"context"
	"net/http"
	"testing"

	"cinema-cli/domain"
	"cinema-cli/seatmap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	onlineKey  = "POST /api/booking/online"
	offlineKey = "POST /api/booking/offline"
	myKey      = "GET /api/booking/my-bookings"
	validKey   = "POST /api/booking/validate"
	studiosKey = "GET /api/cinema/studios"
	seats1Key  = "GET /api/cinema/studios/1/seats"
	seats2Key  = "GET /api/cinema/studios/2/seats"
)

func loadStudioOne(t *testing.T, svc *Service, f *fakeBackend) {
	t.Helper()
	f.on(seats1Key, http.StatusOK, seats1JSON)
	_, err := svc.AllSeats(context.Background(), "1")
	require.NoError(t, err)
}

func TestCreateBookingAuthGating(t *testing.T) {
	ctx := context.Background()

	t.Run("OnlineWithoutTokenMakesNoCall", func(t *testing.T) {
		f := newFakeBackend(t)
		svc := newTestService(t, f)
		require.NoError(t, svc.Cache().Refresh(ctx, "1", []seatmap.Seat{{Number: "A1", ID: 101}}))

		_, err := svc.CreateBooking(ctx, CreateBookingRequest{StudioID: "1", Seats: []string{"A1"}, Type: domain.Online})
		wfErr := requireKind(t, err, KindAuthRequired)
		assert.Equal(t, "Authentication required", wfErr.Message)
		assert.Zero(t, f.total())
	})

	t.Run("AuthCheckedBeforeSeats", func(t *testing.T) {
		f := newFakeBackend(t)
		svc := newTestService(t, f)

		_, err := svc.CreateBooking(ctx, CreateBookingRequest{StudioID: "1", Seats: []string{"Z9"}})
		requireKind(t, err, KindAuthRequired)
	})

	t.Run("OfflineWithoutTokenProceeds", func(t *testing.T) {
		f := newFakeBackend(t)
		svc := newTestService(t, f)
		loadStudioOne(t, svc, f)
		f.on(offlineKey, http.StatusCreated, `{"booking":{"id":9,"booking_code":"cash01","studio_id":1,"seat_ids":[101],"booking_type":"offline","user_name":"Bob"},"qrCode":"data:image/png;base64,cXI="}`)

		booking, err := svc.CreateBooking(ctx, CreateBookingRequest{
			StudioID:      "1",
			Seats:         []string{"A1"},
			Type:          domain.Offline,
			CustomerName:  "Bob",
			CustomerEmail: "bob@example.com",
		})
		require.NoError(t, err)
		assert.Equal(t, "cash01", booking.ID)
		assert.Equal(t, domain.Offline, booking.BookingType)
		assert.Equal(t, "data:image/png;base64,cXI=", booking.QRCode)

		body := f.body(t, offlineKey)
		assert.Equal(t, "Bob", body["customerName"])
		assert.Equal(t, "bob@example.com", body["customerEmail"])
		assert.Equal(t, float64(1), body["studioId"])
		assert.Empty(t, f.authHeader(offlineKey))
	})
}

func TestCreateBookingResolutionCompleteness(t *testing.T) {
	ctx := context.Background()
	success := `{"booking":{"id":1,"booking_code":"abc123","studio_id":1,"seat_ids":[101],"status":"active"},"qrCode":"cXI="}`

	tests := []struct {
		name    string
		seats   []string
		proceed bool
	}{
		{"AllKnown", []string{"A1", "A2"}, true},
		{"SingleKnown", []string{"A1"}, true},
		{"OneUnknown", []string{"A1", "C7"}, false},
		{"AllUnknown", []string{"Z1"}, false},
		{"Empty", []string{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeBackend(t)
			svc := newTestService(t, f)
			signIn(t, svc)
			loadStudioOne(t, svc, f)
			f.on(onlineKey, http.StatusCreated, success)

			_, err := svc.CreateBooking(ctx, CreateBookingRequest{StudioID: "1", Seats: tt.seats, Type: domain.Online})
			if tt.proceed {
				require.NoError(t, err)
				assert.Equal(t, 1, f.hit(onlineKey))
				return
			}
			wfErr := requireKind(t, err, KindValidation)
			assert.Equal(t, "Some seats are invalid", wfErr.Message)
			assert.Zero(t, f.hit(onlineKey))
		})
	}
}

func TestCreateBookingUncachedStudio(t *testing.T) {
	f := newFakeBackend(t)
	svc := newTestService(t, f)
	signIn(t, svc)

	_, err := svc.CreateBooking(context.Background(), CreateBookingRequest{StudioID: "5", Seats: []string{"A1"}})
	requireKind(t, err, KindValidation)
	assert.Zero(t, f.total())
}

func TestCreateBookingInvalidStudioID(t *testing.T) {
	ctx := context.Background()
	f := newFakeBackend(t)
	svc := newTestService(t, f)
	signIn(t, svc)
	require.NoError(t, svc.Cache().Refresh(ctx, "lobby", []seatmap.Seat{{Number: "A1", ID: 1}}))

	_, err := svc.CreateBooking(ctx, CreateBookingRequest{StudioID: "lobby", Seats: []string{"A1"}})
	wfErr := requireKind(t, err, KindValidation)
	assert.Equal(t, "Invalid studio id", wfErr.Message)
	assert.Zero(t, f.total())
}

func TestCreateBookingScenario(t *testing.T) {
	ctx := context.Background()
	f := newFakeBackend(t)
	svc := newTestService(t, f)
	signIn(t, svc)
	loadStudioOne(t, svc, f)

	f.on(onlineKey, http.StatusBadRequest, `{"error":"Seat A2 is not available"}`)
	_, err := svc.CreateBooking(ctx, CreateBookingRequest{StudioID: "1", Seats: []string{"A2"}, Type: domain.Online})
	wfErr := requireKind(t, err, KindBackend)
	assert.Equal(t, "Seat A2 is not available", wfErr.Message)
	body := f.body(t, onlineKey)
	assert.Equal(t, []any{float64(102)}, body["seatIds"])

	f.on(onlineKey, http.StatusCreated, `{"booking":{"id":11,"booking_code":"abc123","studio_id":1,"seat_ids":[101],"qr_code":"fromrecord"},"qrCode":"fromresponse"}`)
	booking, err := svc.CreateBooking(ctx, CreateBookingRequest{StudioID: "1", Seats: []string{"A1"}, Type: domain.Online})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, booking.Seats)
	assert.Equal(t, domain.StatusActive, booking.Status)
	assert.Equal(t, domain.Online, booking.BookingType)
	assert.Equal(t, "fromresponse", booking.QRCode)
	assert.Equal(t, "Bearer jwt-token", f.authHeader(onlineKey))
}

func TestCreateBookingQRFromRecord(t *testing.T) {
	ctx := context.Background()
	f := newFakeBackend(t)
	svc := newTestService(t, f)
	signIn(t, svc)
	loadStudioOne(t, svc, f)
	f.on(onlineKey, http.StatusCreated, `{"booking":{"id":11,"studio_id":1,"seat_ids":[101],"qr_code":"fromrecord"}}`)

	booking, err := svc.CreateBooking(ctx, CreateBookingRequest{StudioID: "1", Seats: []string{"A1"}})
	require.NoError(t, err)
	assert.Equal(t, "fromrecord", booking.QRCode)
	assert.Equal(t, "11", booking.ID)
}

func TestCreateBookingReplyWithoutBooking(t *testing.T) {
	ctx := context.Background()
	f := newFakeBackend(t)
	svc := newTestService(t, f)
	signIn(t, svc)
	loadStudioOne(t, svc, f)
	f.on(onlineKey, http.StatusCreated, `{"qrCode":"x"}`)

	_, err := svc.CreateBooking(ctx, CreateBookingRequest{StudioID: "1", Seats: []string{"A1"}, Type: domain.Online})
	wfErr := requireKind(t, err, KindBackend)
	assert.Equal(t, "Failed to create booking", wfErr.Message)
	assert.Zero(t, f.hit("GET /api/cinema/studios//seats"))
}

func TestListUserBookingsSkipsMissingStudio(t *testing.T) {
	f := newFakeBackend(t)
	f.on(myKey, http.StatusOK, `[{"id":5,"booking_code":"zzz999","seat_ids":[7]}]`)
	f.on(studiosKey, http.StatusOK, studiosJSON)
	svc := newTestService(t, f)
	signIn(t, svc)

	list, err := svc.ListUserBookings(context.Background(), "7")
	require.NoError(t, err)
	require.Len(t, list.Bookings, 1)
	assert.Equal(t, []string{"Seat-7"}, list.Bookings[0].Seats)
	assert.Zero(t, f.hit("GET /api/cinema/studios//seats"))
}

const myBookingsJSON = `[
	{"id":1,"booking_code":"abc123","studio_id":1,"studio_name":"Old Name","seat_ids":[101,102],"status":"active"},
	{"id":2,"booking_code":"def456","studio_id":2,"seat_ids":[201],"status":"used"}
]`

func TestListUserBookings(t *testing.T) {
	ctx := context.Background()

	t.Run("RequiresToken", func(t *testing.T) {
		f := newFakeBackend(t)
		svc := newTestService(t, f)

		_, err := svc.ListUserBookings(ctx, "7")
		requireKind(t, err, KindAuthRequired)
		assert.Zero(t, f.total())
	})

	t.Run("WarmsCachesAndConverts", func(t *testing.T) {
		f := newFakeBackend(t)
		f.on(myKey, http.StatusOK, myBookingsJSON)
		f.on(studiosKey, http.StatusOK, studiosJSON)
		f.on(seats1Key, http.StatusOK, seats1JSON)
		f.on(seats2Key, http.StatusOK, seats2JSON)
		svc := newTestService(t, f)
		signIn(t, svc)

		list, err := svc.ListUserBookings(ctx, "7")
		require.NoError(t, err)
		require.Len(t, list.Bookings, 2)
		assert.Empty(t, list.Degraded)

		assert.Equal(t, []string{"A1", "A2"}, list.Bookings[0].Seats)
		assert.Equal(t, "Studio One", list.Bookings[0].StudioName)
		assert.Equal(t, []string{"B1"}, list.Bookings[1].Seats)
		assert.Equal(t, domain.StatusUsed, list.Bookings[1].Status)

		_, err = svc.ListUserBookings(ctx, "7")
		require.NoError(t, err)
		assert.Equal(t, 1, f.hit(seats1Key))
		assert.Equal(t, 1, f.hit(seats2Key))
		assert.Equal(t, 2, f.hit(studiosKey))
	})

	t.Run("SubFetchFailuresDegrade", func(t *testing.T) {
		f := newFakeBackend(t)
		f.on(myKey, http.StatusOK, myBookingsJSON)
		f.on(studiosKey, http.StatusInternalServerError, `{"error":"studios down"}`)
		f.on(seats1Key, http.StatusOK, seats1JSON)
		f.on(seats2Key, http.StatusInternalServerError, `{"error":"seats down"}`)
		svc := newTestService(t, f)
		signIn(t, svc)

		list, err := svc.ListUserBookings(ctx, "7")
		require.NoError(t, err)
		require.Len(t, list.Bookings, 2)

		assert.Equal(t, "Old Name", list.Bookings[0].StudioName)
		assert.Equal(t, []string{"A1", "A2"}, list.Bookings[0].Seats)
		assert.Equal(t, []string{"Seat-201"}, list.Bookings[1].Seats)

		require.Len(t, list.Degraded, 2)
		assert.Contains(t, list.Degraded, Degraded{Stage: StageNames, Reason: "studios down"})
		assert.Contains(t, list.Degraded, Degraded{StudioID: "2", Stage: StageSeats, Reason: "seats down"})

		_, err = svc.ListUserBookings(ctx, "7")
		require.NoError(t, err)
		assert.Equal(t, 1, f.hit(seats1Key))
		assert.Equal(t, 2, f.hit(seats2Key))
	})

	t.Run("MainFetchFails", func(t *testing.T) {
		f := newFakeBackend(t)
		f.on(myKey, http.StatusUnauthorized, `{"error":"Token expired"}`)
		svc := newTestService(t, f)
		signIn(t, svc)

		_, err := svc.ListUserBookings(ctx, "7")
		wfErr := requireKind(t, err, KindBackend)
		assert.Equal(t, "Token expired", wfErr.Message)
		assert.Zero(t, f.hit(studiosKey))
	})
}

func TestGetBookingByID(t *testing.T) {
	ctx := context.Background()
	f := newFakeBackend(t)
	f.on(myKey, http.StatusOK, myBookingsJSON)
	f.on(studiosKey, http.StatusOK, studiosJSON)
	f.on(seats1Key, http.StatusOK, seats1JSON)
	f.on(seats2Key, http.StatusOK, seats2JSON)
	svc := newTestService(t, f)

	_, err := svc.GetBookingByID(ctx, "abc123")
	requireKind(t, err, KindAuthRequired)
	assert.Zero(t, f.total())

	signIn(t, svc)
	booking, err := svc.GetBookingByID(ctx, "def456")
	require.NoError(t, err)
	assert.Equal(t, "2", booking.StudioID)
	assert.Equal(t, 1, f.hit(myKey))

	booking, err = svc.GetBookingByID(ctx, "DEF456")
	require.NoError(t, err)
	assert.Equal(t, "def456", booking.ID)

	_, err = svc.GetBookingByID(ctx, "zzz999")
	wfErr := requireKind(t, err, KindNotFound)
	assert.Equal(t, "Booking not found", wfErr.Message)
}

func TestValidateBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("UsedStatusReflected", func(t *testing.T) {
		f := newFakeBackend(t)
		f.on(validKey, http.StatusOK, `{"booking":{"id":1,"booking_code":"abc123","studio_id":1,"seat_ids":[101],"status":"used"},"message":"Booking validated"}`)
		f.on(studiosKey, http.StatusOK, studiosJSON)
		f.on(seats1Key, http.StatusOK, seats1JSON)
		svc := newTestService(t, f)

		result, err := svc.ValidateBooking(ctx, "ABC123")
		require.NoError(t, err)
		assert.Equal(t, "abc123", f.body(t, validKey)["bookingCode"])
		assert.Equal(t, domain.StatusUsed, result.Booking.Status)
		assert.Equal(t, []string{"A1"}, result.Booking.Seats)
		assert.Equal(t, "Studio One", result.Booking.StudioName)
		assert.Equal(t, "Booking validated", result.Message)

		_, err = svc.ValidateBooking(ctx, "abc123")
		require.NoError(t, err)
		assert.Equal(t, 1, f.hit(studiosKey))
		assert.Equal(t, 1, f.hit(seats1Key))
	})

	t.Run("WarmUpFailureDegrades", func(t *testing.T) {
		f := newFakeBackend(t)
		f.on(validKey, http.StatusOK, `{"booking":{"id":1,"studio_id":2,"seat_ids":[201],"status":"used"}}`)
		f.on(studiosKey, http.StatusBadGateway, `not json`)
		f.on(seats2Key, http.StatusBadGateway, `not json`)
		svc := newTestService(t, f)

		result, err := svc.ValidateBooking(ctx, "x")
		require.NoError(t, err)
		assert.Equal(t, []string{"Seat-201"}, result.Booking.Seats)
		assert.Equal(t, domain.StatusUsed, result.Booking.Status)
		assert.Len(t, result.Degraded, 2)
	})

	t.Run("ReplyWithoutBooking", func(t *testing.T) {
		f := newFakeBackend(t)
		f.on(validKey, http.StatusOK, `{"message":"ok"}`)
		svc := newTestService(t, f)

		result, err := svc.ValidateBooking(ctx, "abc123")
		wfErr := requireKind(t, err, KindNotFound)
		assert.Equal(t, "Booking not found", wfErr.Message)
		assert.Empty(t, result.Booking.ID)
		assert.Equal(t, 1, f.total())
	})

	t.Run("RejectedVerbatim", func(t *testing.T) {
		f := newFakeBackend(t)
		f.on(validKey, http.StatusNotFound, `{"error":"Booking already used"}`)
		svc := newTestService(t, f)

		_, err := svc.ValidateBooking(ctx, "abc123")
		wfErr := requireKind(t, err, KindBackend)
		assert.Equal(t, "Booking already used", wfErr.Message)
		assert.Zero(t, f.hit(studiosKey))
	})
}

func TestCancelBookingUnsupported(t *testing.T) {
	f := newFakeBackend(t)
	svc := newTestService(t, f)
	signIn(t, svc)

	err := svc.CancelBooking(context.Background(), "abc123")
	wfErr := requireKind(t, err, KindUnsupported)
	assert.Equal(t, "Cancel booking not yet implemented", wfErr.Message)
	assert.Zero(t, f.total())
}
