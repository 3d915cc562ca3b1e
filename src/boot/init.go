package boot

import (
	"ctb/src/db"
	"ctb/src/lib"
	"ctb/src/models"
	"ctb/src/utils"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Movie{},
		&models.Hall{},
		&models.Show{},
		&models.Booking{},
		&models.JobTask{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	seedHalls(db)

	return db
}

// seedHalls creates the default halls on a fresh database so shows can be
// scheduled immediately.
func seedHalls(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.Hall{}).Count(&count).Error; err != nil {
		log.Printf("Error counting halls: %s\n", err.Error())
		return
	}
	if count > 0 {
		return
	}
	names := []string{"Hall 1", "Hall 2", "Hall 3"}
	halls := make([]models.Hall, 0, len(names))
	for _, name := range names {
		halls = append(halls, models.Hall{
			Name:    name,
			Slug:    slug.Make(name),
			Enabled: true,
		})
	}
	if err := db.Create(&halls).Error; err != nil {
		log.Printf("Error seeding halls: %s\n", err.Error())
		return
	}
	log.Printf("Seeded %d default halls\n", len(halls))
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	// Sweep backstop for booking timers lost to a crash between the timer
	// firing and the release committing.
	id, err := lib.CreateCronJob(utils.ReleaseExpiredBookings, time.Minute)
	if err != nil {
		log.Printf("Error scheduling booking sweep: %s\n", err.Error())
	} else {
		log.Printf("Scheduled booking sweep job %s\n", *id)
	}
	jobsWaitingInQueue := len(sched.Jobs())
	log.Println("Jobs in queue:", jobsWaitingInQueue)
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}

// RecoverQueuedJobs re-registers pending booking-timeout tasks after a
// restart. The JobTask row is the source of truth; the live gocron timer dies
// with the process.
func RecoverQueuedJobs() error {
	sched, err := lib.GetScheduler()
	if err != nil {
		return err
	}
	db := db.GetDb()
	var jobTasks []models.JobTask
	now := time.Now()
	err = db.
		Model(&models.JobTask{}).Select("id", "payload", "runs_at").
		Where(&models.JobTask{Status: "pending", JobType: "OneTimeJobStartDateTime"}).
		Where("runs_at > ?", now).
		Order("runs_at asc").
		Limit(100).
		Find(&jobTasks).
		Error
	if err != nil {
		log.Printf("Error retrieving jobs: %s\n", err.Error())
		return err
	}
	log.Printf("Found %d pending jobs", len(jobTasks))
	for _, jobTask := range jobTasks {
		rawId, ok := jobTask.Payload["id"].(float64)
		if !ok {
			log.Printf("Job [%s] has no target id in payload. Skipping\n", jobTask.ID.String())
			continue
		}
		bookingId := uint(rawId)
		taskId := jobTask.ID
		jobDef := gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(jobTask.RunsAt))
		jt := gocron.NewTask(func() {
			if err := utils.ReleaseBooking(bookingId); err != nil {
				log.Printf("Error releasing booking [%d]: %s\n", bookingId, err.Error())
				return
			}
			models.MarkJobTaskDone(taskId)
		})
		job, err := sched.NewJob(jobDef, jt)
		if err != nil {
			log.Printf("Failed to schedule job [%s]. Skipping: %s\n", jobTask.ID.String(), err.Error())
			continue
		}
		log.Printf("Added job to scheduler: name=%s id=%s job=%s\n", jobTask.Name, jobTask.ID.String(), job.ID().String())
	}

	return nil
}

// UpdateExpiredJobs marks past-due pending tasks so the recovery scan never
// re-arms a timer whose moment already passed. Their bookings are picked up by
// the sweep instead.
func UpdateExpiredJobs() {
	db := db.GetDb()
	err := db.
		Transaction(func(tx *gorm.DB) error {
			err := tx.Model(&models.JobTask{}).
				Where("status", "pending").
				Where("runs_at < ?", time.Now()).
				Update("status", "expired").Error
			if err != nil {
				return err
			}
			return nil
		})
	if err != nil {
		log.Printf("Error while processing expired jobs: %s\n", err.Error())
	}
}
