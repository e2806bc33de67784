package mongodb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsResumeTokenGoneErr_TrueForChangeStreamHistoryLost(t *testing.T) {
	err := mongo.CommandError{Code: 286, Message: "change stream history lost"}
	assert.True(t, isResumeTokenGoneErr(err))
}

func TestIsResumeTokenGoneErr_FalseForNetworkError(t *testing.T) {
	err := errors.New("server selection timeout")
	assert.False(t, isResumeTokenGoneErr(err))
}
