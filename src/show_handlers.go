package main

import (
	"ctb/src/config"
	"ctb/src/db"
	"ctb/src/models"
	"ctb/src/types"
	"ctb/src/utils"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func showHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/show/all", func(ctx *gin.Context) {
			db := db.GetDb()
			var shows []models.Show
			err := db.
				Model(&models.Show{}).
				Where("date_time > ?", time.Now()).
				Preload("Movie").
				Order("date_time asc").
				Find(&shows).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			// One card per movie on the listing page; the earliest upcoming
			// show wins.
			seen := make(map[string]bool)
			movies := make([]*models.Movie, 0)
			for _, show := range shows {
				if seen[show.MovieID] || show.Movie == nil {
					continue
				}
				seen[show.MovieID] = true
				movies = append(movies, show.Movie)
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "shows": movies})
		}).
		GET("/show/:movieId", func(ctx *gin.Context) {
			var params types.MovieIDURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var movie models.Movie
			if err := db.
				Where(&models.Movie{ID: params.MovieID}).
				First(&movie).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "movie not found"})
				return
			}
			var shows []models.Show
			err := db.
				Model(&models.Show{}).
				Where(&models.Show{MovieID: params.MovieID}).
				Where("date_time > ?", time.Now()).
				Preload("Hall").
				Order("date_time asc").
				Find(&shows).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			// Group upcoming screenings by calendar date for the date picker.
			dateTime := make(map[string][]types.ShowTimeEntry)
			for _, show := range shows {
				date := show.DateTime.Format(config.DATE_PARSE_FORMAT)
				hallName := ""
				if show.Hall != nil {
					hallName = show.Hall.Name
				}
				dateTime[date] = append(dateTime[date], types.ShowTimeEntry{
					Time:   show.DateTime,
					ShowID: show.ID,
					Hall:   hallName,
					Price:  show.ShowPrice,
				})
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "movie": movie, "dateTime": dateTime})
		}).
		GET("/show/showprice/:showId", func(ctx *gin.Context) {
			var params types.ShowIDURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var show models.Show
			if err := db.
				Model(&models.Show{}).
				Where(&models.Show{ID: params.ShowID}).
				First(&show).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "show not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "showPrice": show.ShowPrice})
		}).
		GET("/booking/seats/:showId", func(ctx *gin.Context) {
			var params types.ShowIDURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			seats, err := utils.GetOccupiedSeats(params.ShowID)
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "occupiedSeats": seats})
		}).
		GET("/halls", func(ctx *gin.Context) {
			db := db.GetDb()
			var halls []models.Hall
			if err := db.
				Model(&models.Hall{}).
				Where(&models.Hall{Enabled: true}).
				Order("name asc").
				Find(&halls).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "halls": halls, "layout": utils.SeatLayout()})
		})
	return g
}

func showAdminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/show/add", func(ctx *gin.Context) {
			var body types.AddShowRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			created, err := utils.AddShows(&body)
			if err != nil {
				log.Printf("[AddShows] error: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"success": true, "message": "shows added", "count": created})
		})
	return g
}
