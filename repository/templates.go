package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"coursegen/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var templateSearchFields = []string{"mainTopic", "title", "description", "category", "technologies"}

// SearchTemplates matches the whole phrase case-insensitively against the
// searchable fields. When that finds nothing, each word of the phrase is
// tried as an alternative.
func (r *Repository) SearchTemplates(ctx context.Context, phrase string, limit int64) ([]model.ProjectTemplate, error) {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return []model.ProjectTemplate{}, nil
	}
	found, err := r.findTemplates(ctx, regexFilter([]string{phrase}), limit)
	if err != nil || len(found) > 0 {
		return found, err
	}
	words := strings.Fields(phrase)
	if len(words) < 2 {
		return found, nil
	}
	return r.findTemplates(ctx, regexFilter(words), limit)
}

func regexFilter(terms []string) bson.M {
	or := make(bson.A, 0, len(terms)*len(templateSearchFields))
	for _, term := range terms {
		pattern := caseInsensitive(term)
		for _, f := range templateSearchFields {
			or = append(or, bson.M{f: pattern})
		}
	}
	return bson.M{"$or": or}
}

func caseInsensitive(term string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"}
}

func (r *Repository) ListTemplates(ctx context.Context, limit int64) ([]model.ProjectTemplate, error) {
	return r.findTemplates(ctx, bson.M{}, limit)
}

func (r *Repository) findTemplates(ctx context.Context, filter bson.M, limit int64) ([]model.ProjectTemplate, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.templates.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	out := []model.ProjectTemplate{}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// InsertTemplates is best effort: the insert is unordered and duplicate-key
// failures are not reported. It returns how many documents landed.
// InsertTemplates stores templates without stopping at duplicates. IDs are
// assigned in place so callers can hand the stored templates straight back;
// a template rejected as a duplicate keeps a nil ID.
func (r *Repository) InsertTemplates(ctx context.Context, templates []model.ProjectTemplate) (int, error) {
	if len(templates) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, len(templates))
	for i := range templates {
		if templates[i].ID.IsZero() {
			templates[i].ID = primitive.NewObjectID()
		}
		if templates[i].CreatedAt.IsZero() {
			templates[i].CreatedAt = now
		}
		if templates[i].AssignedTo == nil {
			templates[i].AssignedTo = []model.Assignment{}
		}
		docs[i] = templates[i]
	}
	res, err := r.templates.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return len(res.InsertedIDs), nil
	}
	if !onlyDuplicateKeys(err) {
		return 0, err
	}
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, we := range bwe.WriteErrors {
			if we.Index >= 0 && we.Index < len(templates) {
				templates[we.Index].ID = primitive.NilObjectID
			}
		}
		return len(templates) - len(bwe.WriteErrors), nil
	}
	return 0, nil
}

func onlyDuplicateKeys(err error) bool {
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		if bwe.WriteConcernError != nil {
			return false
		}
		for _, we := range bwe.WriteErrors {
			if !mongo.IsDuplicateKeyError(we) {
				return false
			}
		}
		return true
	}
	return mongo.IsDuplicateKeyError(err)
}

func (r *Repository) AssignTemplate(ctx context.Context, templateID string, a model.Assignment) (*model.ProjectTemplate, error) {
	id, err := objectID(templateID)
	if err != nil {
		return nil, err
	}
	var tpl model.ProjectTemplate
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.templates.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$addToSet": bson.M{"assignedTo": a}}, opts).Decode(&tpl)
	if err != nil {
		return nil, notFound(err)
	}
	return &tpl, nil
}
