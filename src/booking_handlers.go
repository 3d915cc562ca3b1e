package main

import (
	"context"
	"ctb/src/config"
	"ctb/src/db"
	"ctb/src/lib"
	"ctb/src/models"
	"ctb/src/types"
	"ctb/src/utils"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeqown/go-qrcode"
)

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/booking/create", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			url, err := utils.CreateNewBooking(userId, &body)
			if err != nil {
				log.Printf("[CreateNewBooking] error: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "url": url})
		}).
		GET("/booking/my", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var bookings []models.Booking
			err := db.
				Model(&models.Booking{}).
				Where(&models.Booking{UserID: userId}).
				Preload("Show").
				Preload("Show.Movie").
				Preload("Show.Hall").
				Order("created_at desc").
				Find(&bookings).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "bookings": bookings, "count": len(bookings)})
		}).
		GET("/booking/:id/ticket", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var booking models.Booking
			if err := db.
				Model(&models.Booking{}).
				Where(&models.Booking{ID: params.ID, UserID: userId}).
				Preload("Show").
				Preload("Show.Movie").
				First(&booking).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "booking not found"})
				return
			}
			if !booking.IsPaid {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "booking is not paid"})
				return
			}

			cacheKey := fmt.Sprintf("booking:%d:ticket", booking.ID)
			if cached := cachedTicketPath(cacheKey); cached != "" {
				ctx.File(cached)
				return
			}

			filename := fmt.Sprintf("ticket-%d", booking.ID)
			tempdir := os.Getenv("TEMP_DIR")
			if tempdir == "" {
				tempdir = os.TempDir()
			}
			filepath := path.Join(tempdir, fmt.Sprintf("%s.jpeg", filename))
			if _, err := os.Stat(filepath); err == nil {
				ctx.File(filepath)
				return
			}

			payload, err := json.Marshal(map[string]any{
				"bookingId": booking.ID,
				"showId":    booking.ShowID,
				"seats":     strings.Join(booking.SeatIDs(), ","),
				"dateTime":  booking.Show.DateTime.Format(config.TIME_PARSE_FORMAT),
			})
			if err != nil {
				ctx.Status(http.StatusInternalServerError)
				return
			}
			key, err := hex.DecodeString(os.Getenv("API_SECRET"))
			if err != nil {
				log.Printf("Could not read key from string: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			encryptedMessage, err := utils.EncryptMessage(key, string(payload))
			if err != nil {
				log.Printf("Error encrypting message: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			qrc, err := qrcode.New(encryptedMessage)
			if err != nil {
				log.Printf("Error generating qrcode: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			if err := qrc.Save(filepath); err != nil {
				log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			go func() {
				rd := lib.GetRedisClient()
				if rd == nil {
					return
				}
				if err := rd.SetEx(context.Background(), cacheKey, filepath, 24*time.Hour).Err(); err != nil {
					log.Printf("[redis] Error caching ticket path: %s\n", err.Error())
				}
			}()
			ctx.File(filepath)
		})
	return g
}

// cachedTicketPath resolves an already-generated ticket file through redis.
// Empty when redis is unavailable, the key is cold, or the file is gone.
func cachedTicketPath(cacheKey string) string {
	rd := lib.GetRedisClient()
	if rd == nil {
		return ""
	}
	cached, err := rd.Get(context.Background(), cacheKey).Result()
	if err != nil || cached == "" {
		return ""
	}
	if _, err := os.Stat(cached); err != nil {
		return ""
	}
	return cached
}
