package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func GenerateRoundID() string {
	return fmt.Sprintf("round_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateBetID() string {
	return fmt.Sprintf("bet_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateEntryID() string {
	return fmt.Sprintf("le_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateHouseTxID() string {
	return fmt.Sprintf("htx_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateSessionID() string {
	return uuid.New().String()
}
