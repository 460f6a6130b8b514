package services

import (
	"os"
	"testing"

	"hogar/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init("test")
	os.Exit(m.Run())
}
