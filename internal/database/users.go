package database

import (
	"teamvest/entity"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (m *MongoDB) GetUser(email string) (*entity.User, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionUsers)
	filter := bson.D{{Key: "email", Value: email}}
	var user entity.User
	err = collection.FindOne(m.ctx, filter).Decode(&user)
	if err != nil {
		return nil, m.findError(err)
	}
	return &user, nil
}

func (m *MongoDB) ListUsers(page, perPage int) ([]*entity.User, int, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, 0, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionUsers)
	total, err := collection.CountDocuments(m.ctx, bson.D{})
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "registered_at", Value: -1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))
	cursor, err := collection.Find(m.ctx, bson.D{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(m.ctx)

	var users []*entity.User
	if err = cursor.All(m.ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, int(total), nil
}

// AllUserEmails feeds the rank batch; every distinct user is processed
// independently.
func (m *MongoDB) AllUserEmails() ([]string, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionUsers)
	values, err := collection.Distinct(m.ctx, "email", bson.D{})
	if err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			emails = append(emails, s)
		}
	}
	return emails, nil
}

func (m *MongoDB) SetUserActive(email string, active bool) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionUsers)
	filter := bson.D{{Key: "email", Value: email}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "is_active", Value: active},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}
	res, err := collection.UpdateOne(m.ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoDB) UpdateUserProfile(email string, edit *entity.UserEdit) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	set := bson.D{{Key: "updated_at", Value: time.Now().UTC()}}
	if edit.Name != "" {
		set = append(set, bson.E{Key: "name", Value: edit.Name})
	}
	if edit.Country != "" {
		set = append(set, bson.E{Key: "country", Value: edit.Country})
	}
	if edit.InvestmentAllowed != nil {
		set = append(set, bson.E{Key: "investment_allowed", Value: *edit.InvestmentAllowed})
	}

	collection := connection.Database(m.database).Collection(collectionUsers)
	res, err := collection.UpdateOne(m.ctx, bson.D{{Key: "email", Value: email}}, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
