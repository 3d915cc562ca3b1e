package common

import (
	"ctb/src/db"
	"ctb/src/lib"
	"ctb/src/models"
	"ctb/src/types"
	"ctb/src/utils"
	"errors"
	"log"
	"math/rand"
	"time"

	"gorm.io/gorm"
)

// Time-of-day palette and price tiers for auto-generated screenings. Each
// generated day gets one to three slots picked from here.
var autogenTimes = []struct{ hour, minute int }{
	{13, 0},
	{16, 30},
	{20, 0},
	{22, 30},
}

var autogenPrices = []float64{8, 10, 12, 15}

// GenerateShows fills upcoming days with screenings for currently running
// movies. Mode "tomorrow" covers just the next day, "week" the next seven.
// Generation is idempotent per (movie, hall, datetime): slots that already
// hold a show are skipped rather than doubled.
func GenerateShows(mode types.GenerateMode) (int, error) {
	ids, err := lib.TMDBNowPlayingIDs()
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, errors.New("no running movies available for generation")
	}

	db := db.GetDb()
	var halls []models.Hall
	if err := db.
		Model(&models.Hall{}).
		Where(&models.Hall{Enabled: true}).
		Find(&halls).
		Error; err != nil {
		return 0, err
	}
	if len(halls) == 0 {
		return 0, errors.New("no enabled halls available for generation")
	}

	days := 7
	if mode == types.GENERATE_TOMORROW {
		days = 1
	}

	created := 0
	now := time.Now()
	for day := 1; day <= days; day++ {
		date := now.AddDate(0, 0, day)

		// A random subset of the running movies screens each day.
		picks := rand.Perm(len(ids))
		count := 2 + rand.Intn(3)
		if count > len(picks) {
			count = len(picks)
		}
		for _, pi := range picks[:count] {
			movieId := ids[pi]
			movie, err := utils.EnsureMovie(movieId)
			if err != nil {
				log.Printf("[autogen] skipping movie %s: %s\n", movieId, err.Error())
				continue
			}

			hall := halls[rand.Intn(len(halls))]
			price := autogenPrices[rand.Intn(len(autogenPrices))]

			slots := rand.Perm(len(autogenTimes))[:1+rand.Intn(3)]
			for _, si := range slots {
				slot := autogenTimes[si]
				instant := time.Date(date.Year(), date.Month(), date.Day(), slot.hour, slot.minute, 0, 0, time.Local)
				if instant.Before(now) {
					continue
				}
				if err := createShowIfAbsent(movie.ID, hall.ID, instant, price); err != nil {
					if !errors.Is(err, errShowExists) {
						log.Printf("[autogen] Error creating show for %s: %s\n", movie.Title, err.Error())
					}
					continue
				}
				created++
			}
		}
	}
	log.Printf("[autogen] generated %d show(s) for mode %s\n", created, mode)
	return created, nil
}

var errShowExists = errors.New("show already exists")

func createShowIfAbsent(movieId string, hallId uint, dateTime time.Time, price float64) error {
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.
			Model(&models.Show{}).
			Where("movie_id = ? AND hall_id = ? AND date_time = ?", movieId, hallId, dateTime).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count > 0 {
			return errShowExists
		}
		show := models.Show{
			MovieID:       movieId,
			HallID:        hallId,
			DateTime:      dateTime,
			ShowPrice:     price,
			OccupiedSeats: types.JSONB{},
		}
		return tx.Create(&show).Error
	})
}
