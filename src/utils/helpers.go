package utils

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"ctb/src/config"
	"ctb/src/db"
	"ctb/src/lib"
	"ctb/src/lib/mailer"
	"ctb/src/models"
	"ctb/src/types"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func GenerateJWT(email string, id uint, role string) (string, error) {
	claims := types.Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(id),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString(jwtKey)
}

// EnsureMovie returns the cached Movie row for an external catalog id,
// fetching and persisting it on first reference. Creation is upsert-safe so
// two concurrent calls for the same id cannot violate the identity
// constraint.
func EnsureMovie(id string) (*models.Movie, error) {
	db := db.GetDb()
	var movie models.Movie
	err := db.
		Model(&models.Movie{}).
		Where(&models.Movie{ID: id}).
		First(&movie).
		Error
	if err == nil {
		return &movie, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fetched, err := lib.TMDBFetchMovie(id)
	if err != nil {
		return nil, fmt.Errorf("could not fetch movie [%s] from catalog: %s", id, err.Error())
	}
	movie = models.Movie{
		ID:           fetched.ID,
		Title:        fetched.Title,
		Overview:     fetched.Overview,
		PosterPath:   fetched.PosterPath,
		BackdropPath: fetched.BackdropPath,
		ReleaseDate:  fetched.ReleaseDate,
		VoteAverage:  fetched.VoteAverage,
		Runtime:      fetched.Runtime,
		Genres:       fetched.Genres,
		Casts:        fetched.Casts,
		Trailers:     fetched.Trailers,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		// Lost races leave the winner's row in place.
		return tx.
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&movie).
			Error
	})
	if err != nil {
		return nil, err
	}
	if err := db.Where(&models.Movie{ID: id}).First(&movie).Error; err != nil {
		return nil, err
	}
	return &movie, nil
}

// AddShows validates and creates one Show per requested instant. The whole
// batch is rejected on the first conflict, existing or intra-batch; nothing
// is written in that case.
func AddShows(body *types.AddShowRequestBody) (int, error) {
	hallName := strings.TrimSpace(body.Hall)
	if hallName == "" {
		return 0, errors.New("hall is required")
	}

	movie, err := EnsureMovie(body.MovieID)
	if err != nil {
		return 0, err
	}
	gap := RequiredGap(movie.Runtime)

	instants, err := ExpandShowInstants(body.ShowsInput, time.Now())
	if err != nil {
		return 0, err
	}
	if len(instants) == 0 {
		return 0, errors.New("no show times given")
	}
	if a, b := FirstBatchConflict(instants, gap); a != nil {
		return 0, fmt.Errorf(
			"show at %s conflicts with show at %s in the same request: shows in %s must be at least %s apart",
			b.Format(config.TIME_PARSE_FORMAT), a.Format(config.TIME_PARSE_FORMAT), hallName, gap,
		)
	}

	created := 0
	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		var hall models.Hall
		// The hall row lock serializes concurrent scheduling for one hall so
		// two admins cannot both pass the conflict check before either
		// commits.
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Hall{Name: hallName}).
			First(&hall).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("hall [%s] does not exist", hallName)
			}
			return err
		}
		if !hall.Enabled {
			return fmt.Errorf("hall [%s] is not available for scheduling", hallName)
		}

		windowStart := instants[0].Add(-gap)
		windowEnd := instants[len(instants)-1].Add(gap)
		var existing []time.Time
		if err := tx.
			Model(&models.Show{}).
			Where("hall_id = ? AND date_time > ? AND date_time < ?", hall.ID, windowStart, windowEnd).
			Order("date_time asc").
			Pluck("date_time", &existing).
			Error; err != nil {
			return err
		}
		if e, c := FindExistingConflict(existing, instants, gap); e != nil {
			return fmt.Errorf(
				"show at %s conflicts with the existing show at %s in %s",
				c.Format(config.TIME_PARSE_FORMAT), e.Format(config.TIME_PARSE_FORMAT), hallName,
			)
		}

		shows := make([]models.Show, 0, len(instants))
		for _, instant := range instants {
			shows = append(shows, models.Show{
				MovieID:       movie.ID,
				HallID:        hall.ID,
				DateTime:      instant,
				ShowPrice:     body.ShowPrice,
				OccupiedSeats: types.JSONB{},
			})
		}
		if err := tx.Create(&shows).Error; err != nil {
			return err
		}
		created = len(shows)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// GetOccupiedSeats reads the claimed seat ids of one show.
func GetOccupiedSeats(showId uint) ([]string, error) {
	db := db.GetDb()
	var show models.Show
	if err := db.
		Model(&models.Show{}).
		Where(&models.Show{ID: showId}).
		First(&show).
		Error; err != nil {
		return nil, errors.New("show not found")
	}
	seats := make([]string, 0, len(show.OccupiedSeats))
	for seat := range show.OccupiedSeats {
		seats = append(seats, seat)
	}
	return seats, nil
}

// claimSeats marks every requested seat for userId inside the caller's
// transaction. The caller must already hold the show row lock. Any seat
// outside the layout or already present rejects the whole claim.
func claimSeats(tx *gorm.DB, show *models.Show, seats []string, userId uint) error {
	if show.OccupiedSeats == nil {
		show.OccupiedSeats = types.JSONB{}
	}
	for _, seat := range seats {
		if !ValidSeatID(seat) {
			return fmt.Errorf("seat [%s] does not exist", seat)
		}
		if _, taken := show.OccupiedSeats[seat]; taken {
			return fmt.Errorf("seat [%s] is not available", seat)
		}
	}
	for _, seat := range seats {
		show.OccupiedSeats[seat] = userId
	}
	return tx.
		Model(&models.Show{}).
		Where(&models.Show{ID: show.ID}).
		Update("occupied_seats", show.OccupiedSeats).
		Error
}

// releaseSeats drops a booking's seat ids from the show map inside the
// caller's transaction.
func releaseSeats(tx *gorm.DB, showId uint, seats []string) error {
	var show models.Show
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(&models.Show{ID: showId}).
		First(&show).
		Error; err != nil {
		return err
	}
	if show.OccupiedSeats == nil {
		return nil
	}
	for _, seat := range seats {
		delete(show.OccupiedSeats, seat)
	}
	return tx.
		Model(&models.Show{}).
		Where(&models.Show{ID: show.ID}).
		Update("occupied_seats", show.OccupiedSeats).
		Error
}

// CreateNewBooking claims the selected seats, creates the unpaid booking and
// opens a payment session. Returns the payment URL the client is redirected
// to.
func CreateNewBooking(userId uint, body *types.CreateBookingRequestBody) (string, error) {
	var booking models.Booking
	var movie models.Movie
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var show models.Show
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Show{ID: body.ShowID}).
			First(&show).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("show not found")
			}
			return err
		}
		if show.DateTime.Before(time.Now()) {
			return errors.New("show has already started")
		}
		if err := tx.Where(&models.Movie{ID: show.MovieID}).First(&movie).Error; err != nil {
			return err
		}
		if err := claimSeats(tx, &show, body.SelectedSeats, userId); err != nil {
			return err
		}
		seats := make(types.JSONBArray, 0, len(body.SelectedSeats))
		for _, seat := range body.SelectedSeats {
			seats = append(seats, seat)
		}
		booking = models.Booking{
			UserID:      userId,
			ShowID:      show.ID,
			Amount:      BookingAmount(show.ShowPrice, len(body.SelectedSeats)),
			BookedSeats: seats,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	url, sessionId, err := createCheckoutSession(&booking, movie.Title)
	if err != nil {
		// The claim has no payment session to reconcile against; undo it.
		if rerr := ReleaseBooking(booking.ID); rerr != nil {
			log.Printf("Error rolling back booking [%d]: %s\n", booking.ID, rerr.Error())
		}
		return "", errors.New("could not create payment session")
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: booking.ID}).
			Updates(&models.Booking{PaymentLink: url, CheckoutSessionId: &sessionId}).
			Error
	})
	if err != nil {
		return "", err
	}

	scheduleBookingTimeout(booking.ID)
	return url, nil
}

func createCheckoutSession(booking *models.Booking, movieTitle string) (string, string, error) {
	sc := lib.GetStripeClient()
	appHost := os.Getenv("APP_HOST")
	unitAmount := UnitAmountCents(booking.Amount, len(booking.BookedSeats))
	params := stripe.CheckoutSessionCreateParams{
		SuccessURL: stripe.String(fmt.Sprintf("%s/loading/my-bookings", appHost)),
		CancelURL:  stripe.String(fmt.Sprintf("%s/my-bookings", appHost)),
		Mode:       stripe.String("payment"),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency: stripe.String(config.Currency()),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(movieTitle),
					},
					UnitAmount: stripe.Int64(unitAmount),
				},
				Quantity: stripe.Int64(int64(len(booking.BookedSeats))),
			},
		},
		Metadata:  map[string]string{"bookingId": fmt.Sprint(booking.ID)},
		ExpiresAt: stripe.Int64(time.Now().Add(30 * time.Minute).Unix()),
	}
	checkoutSession, err := sc.V1CheckoutSessions.Create(context.Background(), &params)
	if err != nil {
		log.Printf("[stripe] Error creating checkout session for booking [%d]: %s\n", booking.ID, err.Error())
		return "", "", err
	}
	log.Printf("[stripe] CheckoutSessionID: %s\n", checkoutSession.ID)
	return checkoutSession.URL, checkoutSession.ID, nil
}

func scheduleBookingTimeout(bookingId uint) {
	runsAt := time.Now().Add(config.BOOKING_TIMEOUT)
	jobTask := models.JobTask{
		Name:    fmt.Sprintf("Booking_%d_Timeout", bookingId),
		JobType: "OneTimeJobStartDateTime",
		RunsAt:  runsAt,
		Payload: types.JSONB{
			"id":    int64(bookingId),
			"table": "bookings",
		},
		Source: "Booking",
		Topic:  "BookingTimeouts",
	}
	id, err := jobTask.CreateAndEnqueueJobTask(jobTask, func() {
		if err := ReleaseBooking(bookingId); err != nil {
			log.Printf("Error releasing booking [%d]: %s\n", bookingId, err.Error())
		}
	})
	if err != nil {
		log.Printf("Error creating job for Booking: id=%d error=%s\n", bookingId, err.Error())
		return
	}
	log.Printf("Created job for Booking[%d] with ID %s\n", bookingId, id)
}

// ReleaseBooking deletes an unpaid booking and returns its seats to
// availability. Paid bookings are never touched.
func ReleaseBooking(bookingId uint) error {
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Booking{ID: bookingId}).
			First(&booking).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if booking.IsPaid {
			return nil
		}
		if err := releaseSeats(tx, booking.ShowID, booking.SeatIDs()); err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(&booking).Error; err != nil {
			return err
		}
		log.Printf("Released unpaid booking [%d] and %d seat(s)\n", bookingId, len(booking.BookedSeats))
		return nil
	})
}

// ReleaseExpiredBookings is the periodic backstop for timers lost to a
// restart: it sweeps unpaid bookings older than the timeout window.
func ReleaseExpiredBookings() {
	db := db.GetDb()
	var ids []uint
	cutoff := time.Now().Add(-config.BOOKING_TIMEOUT)
	err := db.
		Model(&models.Booking{}).
		Where("is_paid = ? AND created_at < ?", false, cutoff).
		Pluck("id", &ids).
		Error
	if err != nil {
		log.Printf("Error retrieving expired bookings: %s\n", err.Error())
		return
	}
	for _, id := range ids {
		if err := ReleaseBooking(id); err != nil {
			log.Printf("Error releasing booking [%d]: %s\n", id, err.Error())
		}
	}
}

// MarkBookingPaid flips the booking to its terminal paid state and clears the
// payment link. Idempotent: a booking already paid is left as is.
func MarkBookingPaid(bookingId uint) error {
	db := db.GetDb()
	alreadyPaid := false
	err := db.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Booking{ID: bookingId}).
			First(&booking).
			Error; err != nil {
			return err
		}
		if booking.IsPaid {
			alreadyPaid = true
			return nil
		}
		return tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: bookingId}).
			Updates(map[string]any{"is_paid": true, "payment_link": ""}).
			Error
	})
	if err != nil {
		return err
	}
	if alreadyPaid {
		return nil
	}
	go sendBookingConfirmation(bookingId)
	return nil
}

func sendBookingConfirmation(bookingId uint) {
	db := db.GetDb()
	var booking models.Booking
	if err := db.
		Where(&models.Booking{ID: bookingId}).
		Preload("User").
		Preload("Show").
		Preload("Show.Movie").
		Preload("Show.Hall").
		First(&booking).
		Error; err != nil {
		log.Printf("Error loading booking [%d] for confirmation mail: %s\n", bookingId, err.Error())
		return
	}
	senderFrom := os.Getenv("SMTP_FROM")
	input := &lib.SendMailInput{
		Subject:  fmt.Sprintf("Payment Confirmation: %s", booking.Show.Movie.Title),
		From:     senderFrom,
		FromName: "noreply",
		To:       []string{booking.User.Email},
		Body: fmt.Sprintf(`
			<p>Hi %s,</p>
			<p>Your booking for <b>%s</b> is confirmed.</p>
			<p>Hall: %s</p>
			<p>When: %s</p>
			<p>Seats: %s</p>
			<p>This is a system-generated message. Do not reply to this email.</p>
			`,
			booking.User.Name,
			booking.Show.Movie.Title,
			booking.Show.Hall.Name,
			booking.Show.DateTime.Format(config.TIME_PARSE_FORMAT),
			strings.Join(booking.SeatIDs(), ", "),
		),
		Html: true,
	}
	if err := mailer.NewMailerMessage(input); err != nil {
		log.Printf("[mailer] Error sending message: %s\n", err.Error())
	}
}

func EncryptMessage(key []byte, message string) (string, error) {
	plaintext := []byte(message)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	cipherText := gcm.Seal(nonce, nonce, plaintext, nil)
	encodedString := hex.EncodeToString(cipherText)

	return encodedString, nil
}

func DecryptMessage(key []byte, message string) (*string, error) {
	cipherText, err := hex.DecodeString(message)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(cipherText) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	decryptedData, err := gcm.Open(nil, cipherText[:gcm.NonceSize()], cipherText[gcm.NonceSize():], nil)
	if err != nil {
		return nil, err
	}
	decodedString := string(decryptedData)

	return &decodedString, nil
}
