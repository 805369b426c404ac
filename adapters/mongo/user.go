package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	driver "go.mongodb.org/mongo-driver/mongo"

	"github.com/rmarchant/tudu"
)

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password"`
	Tokens       []tokenDoc         `bson:"tokens"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

type tokenDoc struct {
	Access string `bson:"access"`
	Token  string `bson:"token"`
}

func (d *userDoc) toUser() *tudu.User {
	tokens := make([]tudu.SessionToken, 0, len(d.Tokens))
	for _, t := range d.Tokens {
		tokens = append(tokens, tudu.SessionToken{Access: t.Access, Token: t.Token})
	}
	return &tudu.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Tokens:       tokens,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (a *Adapter) CreateUser(user *tudu.User) error {
	ctx, cancel := opCtx()
	defer cancel()

	now := time.Now()
	doc := userDoc{
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Tokens:       []tokenDoc{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	res, err := a.users.InsertOne(ctx, doc)
	if err != nil {
		if driver.IsDuplicateKeyError(err) {
			return tudu.ErrEmailTaken
		}
		return err
	}

	user.ID = res.InsertedID.(primitive.ObjectID).Hex()
	user.Tokens = []tudu.SessionToken{}
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (a *Adapter) GetUserByID(id string) (*tudu.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, tudu.ErrUserNotFound
	}

	ctx, cancel := opCtx()
	defer cancel()

	var doc userDoc
	err = a.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if err == driver.ErrNoDocuments {
			return nil, tudu.ErrUserNotFound
		}
		return nil, err
	}
	return doc.toUser(), nil
}

func (a *Adapter) GetUserByEmail(email string) (*tudu.User, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var doc userDoc
	err := a.users.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		if err == driver.ErrNoDocuments {
			return nil, tudu.ErrUserNotFound
		}
		return nil, err
	}
	return doc.toUser(), nil
}

func (a *Adapter) AppendToken(userID string, t tudu.SessionToken) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return tudu.ErrUserNotFound
	}

	ctx, cancel := opCtx()
	defer cancel()

	res, err := a.users.UpdateByID(ctx, oid, bson.M{
		"$push": bson.M{"tokens": tokenDoc{Access: t.Access, Token: t.Token}},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return tudu.ErrUserNotFound
	}
	return nil
}

func (a *Adapter) RemoveToken(userID, token string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return tudu.ErrUserNotFound
	}

	ctx, cancel := opCtx()
	defer cancel()

	// $pull of an absent token matches the user and changes nothing, which
	// keeps revocation idempotent.
	res, err := a.users.UpdateByID(ctx, oid, bson.M{
		"$pull": bson.M{"tokens": bson.M{"token": token}},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return tudu.ErrUserNotFound
	}
	return nil
}
