package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/LouisaLyu/System-design-project-3/internal/database"
	"github.com/LouisaLyu/System-design-project-3/internal/models"
	"github.com/LouisaLyu/System-design-project-3/internal/services"
)

const (
	entriesCollection = "entries"
	// listLimit caps every read at 100 entries
	listLimit = 100
)

// entryDoc is the MongoDB document shape; conversion to the wire
// model happens at this boundary.
type entryDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title,omitempty"`
	Body      string             `bson:"body"`
	Topic     string             `bson:"topic,omitempty"`
	Tags      []string           `bson:"tags"`
	MoodColor string             `bson:"mood_color,omitempty"`
	EntryDate string             `bson:"entry_date,omitempty"`
	UserID    string             `bson:"user_id"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d entryDoc) toModel() models.JournalEntry {
	return models.JournalEntry{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Body:      d.Body,
		Topic:     d.Topic,
		Tags:      models.EnsureTags(d.Tags),
		MoodColor: d.MoodColor,
		EntryDate: d.EntryDate,
		UserID:    d.UserID,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// entryPayload is what clients may set; id and userId are never
// accepted from the request body.
type entryPayload struct {
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Topic     string   `json:"topic"`
	Tags      []string `json:"tags"`
	MoodColor string   `json:"moodColor"`
	EntryDate string   `json:"entryDate"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func storeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// ListEntries returns up to 100 entries, unfiltered, default ordering.
func ListEntries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storeContext()
	defer cancel()

	findOptions := options.Find().SetLimit(listLimit)
	cursor, err := database.DB.Collection(entriesCollection).Find(ctx, bson.M{}, findOptions)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch records")
		return
	}
	defer cursor.Close(ctx)

	var docs []entryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch records")
		return
	}

	result := make([]models.JournalEntry, 0, len(docs))
	for _, d := range docs {
		result = append(result, d.toModel())
	}
	writeJSON(w, http.StatusOK, result)
}

// SearchEntries filters by search terms (case-insensitive contains on
// title/body/topic) and/or an exact userId, newest first, capped at
// 100.
func SearchEntries(w http.ResponseWriter, r *http.Request) {
	terms := r.URL.Query().Get("terms")
	userID := r.URL.Query().Get("userId")

	filter := bson.M{}
	if userID != "" {
		filter["user_id"] = userID
	}
	if terms != "" {
		pattern := regexp.QuoteMeta(terms)
		contains := bson.M{"$regex": pattern, "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"title": contains},
			bson.M{"body": contains},
			bson.M{"topic": contains},
		}
	}

	ctx, cancel := storeContext()
	defer cancel()

	findOptions := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(listLimit)

	cursor, err := database.DB.Collection(entriesCollection).Find(ctx, filter, findOptions)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}
	defer cursor.Close(ctx)

	var docs []entryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	result := make([]models.JournalEntry, 0, len(docs))
	for _, d := range docs {
		result = append(result, d.toModel())
	}
	writeJSON(w, http.StatusOK, result)
}

// CreateEntry creates a new record. Any client-supplied id is
// discarded and userId always comes from the authenticated session.
func CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var payload entryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(payload.Body) == "" {
		writeError(w, http.StatusBadRequest, "Failed to create record: body is required")
		return
	}

	ctx, cancel := storeContext()
	defer cancel()

	now := time.Now().UTC()
	doc := entryDoc{
		ID:        primitive.NewObjectID(),
		Title:     payload.Title,
		Body:      payload.Body,
		Topic:     payload.Topic,
		Tags:      models.EnsureTags(payload.Tags),
		MoodColor: payload.MoodColor,
		EntryDate: payload.EntryDate,
		UserID:    userID.String(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := database.DB.Collection(entriesCollection).InsertOne(ctx, doc); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create record")
		return
	}

	services.PublishJournalChange(r.Context(), "create", doc.ID.Hex())
	writeJSON(w, http.StatusCreated, doc.toModel())
}

// UpdateEntry updates a record in place. Only the creator may edit;
// id and userId in the payload are ignored.
func UpdateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	objectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Entry not found")
		return
	}

	var payload entryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := storeContext()
	defer cancel()

	var existing entryDoc
	err = database.DB.Collection(entriesCollection).
		FindOne(ctx, bson.M{"_id": objectID}).Decode(&existing)
	if err == mongo.ErrNoDocuments {
		writeError(w, http.StatusNotFound, "Entry not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update record")
		return
	}
	if existing.UserID != userID.String() {
		writeError(w, http.StatusForbidden, "You can only edit your own entries")
		return
	}

	update := bson.M{"$set": bson.M{
		"title":      payload.Title,
		"body":       payload.Body,
		"topic":      payload.Topic,
		"tags":       models.EnsureTags(payload.Tags),
		"mood_color": payload.MoodColor,
		"entry_date": payload.EntryDate,
		"updated_at": time.Now().UTC(),
	}}

	var updated entryDoc
	err = database.DB.Collection(entriesCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update,
			options.FindOneAndUpdate().SetReturnDocument(options.After)).
		Decode(&updated)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update record")
		return
	}

	services.PublishJournalChange(r.Context(), "update", updated.ID.Hex())
	writeJSON(w, http.StatusOK, updated.toModel())
}

// DeleteEntry removes a record. Only the creator may delete; the
// deleted record is echoed back as confirmation.
func DeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	objectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Entry not found")
		return
	}

	ctx, cancel := storeContext()
	defer cancel()

	var existing entryDoc
	err = database.DB.Collection(entriesCollection).
		FindOne(ctx, bson.M{"_id": objectID}).Decode(&existing)
	if err == mongo.ErrNoDocuments {
		writeError(w, http.StatusNotFound, "Entry not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete record")
		return
	}
	if existing.UserID != userID.String() {
		writeError(w, http.StatusForbidden, "You can only delete your own entries")
		return
	}

	if _, err := database.DB.Collection(entriesCollection).DeleteOne(ctx, bson.M{"_id": objectID}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete record")
		return
	}

	services.PublishJournalChange(r.Context(), "delete", existing.ID.Hex())
	writeJSON(w, http.StatusOK, existing.toModel())
}
