package handlers

import (
	"errors"
	"net/http"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestRegisterInsertErrorResponseMapsDuplicateKeyToConflict(t *testing.T) {
	duplicate := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}},
	}

	status, message := registerInsertErrorResponse(duplicate)
	if status != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate key insert, got %d", status)
	}
	if message != "User with this email already exists" {
		t.Fatalf("unexpected conflict message: %s", message)
	}
}

func TestRegisterInsertErrorResponseKeepsOtherErrorsInternal(t *testing.T) {
	status, message := registerInsertErrorResponse(errors.New("connection reset"))
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500 for unrelated insert error, got %d", status)
	}
	if message != "db error" {
		t.Fatalf("unexpected error message: %s", message)
	}
}
