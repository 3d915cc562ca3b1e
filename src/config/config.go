package config

import (
	"fmt"
	"os"
	"time"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"
const DATE_PARSE_FORMAT = "2006-01-02"
const TIME_OF_DAY_PARSE_FORMAT = "15:04"

// Minimum idle time between the end of one show and the start of the next in the same hall.
const SHOW_BUFFER_MINUTES = 30

// Runtime assumed for movies the catalog reports without one.
const DEFAULT_RUNTIME_MINUTES = 120

// How long an unpaid booking holds its seats before the timeout job releases them.
const BOOKING_TIMEOUT = 10 * time.Minute

func Currency() string {
	currency := os.Getenv("CURRENCY")
	if currency == "" {
		currency = "usd"
	}
	return currency
}
