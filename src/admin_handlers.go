package main

import (
	"ctb/src/common"
	"ctb/src/db"
	"ctb/src/models"
	"ctb/src/types"
	"ctb/src/utils"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

type monthlyCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

func adminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/dashboard", func(ctx *gin.Context) {
			db := db.GetDb()
			var totalBookings int64
			var totalUsers int64
			var activeShows int64
			var totalRevenue float64
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Model(&models.Booking{}).Count(&totalBookings).Error; err != nil {
					return err
				}
				if err := tx.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
					return err
				}
				if err := tx.
					Model(&models.Show{}).
					Where("date_time > ?", time.Now()).
					Count(&activeShows).
					Error; err != nil {
					return err
				}
				if err := tx.
					Model(&models.Booking{}).
					Where(&models.Booking{IsPaid: true}).
					Select("COALESCE(SUM(amount), 0)").
					Scan(&totalRevenue).
					Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			var upcoming []models.Show
			if err := db.
				Model(&models.Show{}).
				Where("date_time > ?", time.Now()).
				Preload("Movie").
				Preload("Hall").
				Order("date_time asc").
				Limit(10).
				Find(&upcoming).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "dashboard": gin.H{
				"totalBookings": totalBookings,
				"totalUsers":    totalUsers,
				"activeShows":   activeShows,
				"totalRevenue":  totalRevenue,
				"upcomingShows": upcoming,
			}})
		}).
		GET("/bookings", func(ctx *gin.Context) {
			db := db.GetDb()
			var bookings []models.Booking
			err := db.
				Model(&models.Booking{}).
				Preload("User").
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
		GET("/shows", func(ctx *gin.Context) {
			db := db.GetDb()
			var shows []models.Show
			err := db.Transaction(func(tx *gorm.DB) error {
				return tx.
					Model(&models.Show{}).
					Where("date_time > ?", time.Now()).
					Preload("Movie").
					Preload("Hall").
					Order("date_time asc").
					Find(&shows).
					Error
			})
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "shows": shows, "count": len(shows)})
		}).
		GET("/bookings-by-month", func(ctx *gin.Context) {
			db := db.GetDb()
			var rows []monthlyCount
			err := db.
				Model(&models.Booking{}).
				Select("to_char(created_at, 'YYYY-MM') AS month, COUNT(*) AS count").
				Group("month").
				Order("month asc").
				Scan(&rows).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": rows})
		}).
		GET("/shows-by-month", func(ctx *gin.Context) {
			db := db.GetDb()
			var rows []monthlyCount
			err := db.
				Model(&models.Show{}).
				Select("to_char(date_time, 'YYYY-MM') AS month, COUNT(*) AS count").
				Group("month").
				Order("month asc").
				Scan(&rows).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": rows})
		})

	g.
		GET("/halls", func(ctx *gin.Context) {
			db := db.GetDb()
			var halls []models.Hall
			if err := db.
				Model(&models.Hall{}).
				Order("name asc").
				Find(&halls).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "halls": halls, "count": len(halls)})
		}).
		POST("/halls", func(ctx *gin.Context) {
			var body types.CreateHallRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			hall := models.Hall{
				Name:    body.Name,
				Slug:    slug.Make(body.Name),
				Enabled: true,
			}
			if err := db.Create(&hall).Error; err != nil {
				log.Printf("Error creating hall: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "could not create hall"})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"success": true, "hall": hall})
		}).
		PATCH("/halls/:id/toggle", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var hall models.Hall
				if err := tx.
					Model(&models.Hall{}).
					Where(&models.Hall{ID: params.ID}).
					First(&hall).
					Error; err != nil {
					return err
				}
				return tx.
					Model(&models.Hall{}).
					Where(&models.Hall{ID: params.ID}).
					Update("enabled", !hall.Enabled).
					Error
			})
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "could not update hall"})
				return
			}
			ctx.Status(http.StatusNoContent)
		})

	g.
		POST("/ticket/verify", func(ctx *gin.Context) {
			var body types.VerifyTicketRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			key, err := hex.DecodeString(os.Getenv("API_SECRET"))
			if err != nil {
				log.Printf("Could not read key from string: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			dec, err := utils.DecryptMessage(key, body.Code)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid ticket code"})
				return
			}
			bookingId := uint(gjson.Get(*dec, "bookingId").Uint())
			if bookingId == 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid ticket code"})
				return
			}
			db := db.GetDb()
			var booking models.Booking
			if err := db.
				Model(&models.Booking{}).
				Where(&models.Booking{ID: bookingId}).
				Preload("Show").
				Preload("Show.Movie").
				Preload("Show.Hall").
				First(&booking).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "booking not found"})
				return
			}
			if !booking.IsPaid {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "booking is not paid"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "booking": booking, "seats": booking.SeatIDs()})
		}).
		POST("/generate-shows-weekly", func(ctx *gin.Context) {
			created, err := common.GenerateShows(types.GENERATE_WEEK)
			if err != nil {
				log.Printf("[GenerateShows] error: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "created": created})
		}).
		POST("/generate-shows-tomorrow", func(ctx *gin.Context) {
			created, err := common.GenerateShows(types.GENERATE_TOMORROW)
			if err != nil {
				log.Printf("[GenerateShows] error: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "created": created})
		})
	return g
}
