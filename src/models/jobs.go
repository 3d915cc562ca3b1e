package models

import (
	"ctb/src/db"
	"ctb/src/lib"
	"ctb/src/types"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobTask is the durable record of a one-time scheduled job. The in-process
// scheduler forgets its queue on restart; pending rows are re-enqueued by
// boot.RecoverQueuedJobs.
type JobTask struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`

	Name    string          `json:"-"`
	JobType string          `json:"-"`
	RunsAt  time.Time       `json:"-"`
	Payload types.JSONB     `gorm:"type:jsonb" json:"-"`
	Source  string          `json:"-"`
	Topic   string          `json:"-"`
	Status  types.JobStatus `gorm:"default:'pending'" json:"-"`
}

// CreateAndEnqueueJobTask persists the task row and registers the handler with
// the scheduler for a one-shot run at RunsAt. The stored row is the source of
// truth; the gocron job is just the live timer.
func (self *JobTask) CreateAndEnqueueJobTask(jobTask JobTask, handler func()) (string, error) {
	var jobID string
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		sid := uuid.New()
		jobTask.ID = sid
		jobTask.Payload["JobID"] = sid.String()
		if err := tx.Create(&jobTask).Error; err != nil {
			return err
		}
		id, err := lib.CreateOneTimeCronJob(
			gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(jobTask.RunsAt)),
			gocron.NewTask(func() {
				handler()
				MarkJobTaskDone(sid)
			}),
		)
		if err != nil {
			log.Printf("Error enqueueing job %s: %s\n", jobTask.Name, err.Error())
			return err
		}
		jobID = *id
		return nil
	})
	if err != nil {
		return "", err
	}
	log.Printf("Created schedule for job %s with name %s at %s\n", jobID, jobTask.Name, jobTask.RunsAt)
	return jobID, nil
}

func MarkJobTaskDone(id uuid.UUID) {
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.
			Model(&JobTask{}).
			Where(&JobTask{ID: id}).
			Update("status", types.JOB_DONE).
			Error
	})
	if err != nil {
		log.Printf("Error updating job status: %s\n", err.Error())
	}
}
