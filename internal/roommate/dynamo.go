// internal/roommate/dynamo.go
// DynamoDB Repository on a single table keyed by (pk, sk). Conditional writes
// give the same uniqueness guarantees the Postgres schema does.

package roommate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/google/uuid"

	"github.com/imadgeboyega/roomie-backend/internal/auth"
)

const (
	attrPK   = "pk"
	attrSK   = "sk"
	attrType = "entity"

	entityUser      = "user"
	entityProfile   = "profile"
	entitySwipe     = "swipe"
	entityMatch     = "match"
	entityUserMatch = "user_match"
	entityGuard     = "guard"
)

// Item keys, as (pk, sk).
func userKey(id string) (string, string)       { return "USER#" + id, "USER" }
func usernameKey(name string) (string, string) { return "USERNAME#" + strings.ToLower(name), "USERNAME" }
func emailKey(email string) (string, string)   { return "EMAIL#" + strings.ToLower(email), "EMAIL" }
func profileKey(id string) (string, string)    { return "PROFILE#" + id, "PROFILE" }
func matchKey(u1, u2 string) (string, string)  { return "MATCH#" + u1 + "#" + u2, "MATCH" }

func swipeKeyOf(swiper, swiped string) (string, string) {
	return "SWIPE#" + swiper, swiped
}

func userMatchKey(user, u1, u2 string) (string, string) {
	return "USERMATCH#" + user, u1 + "#" + u2
}

// DynamoRepository implements Repository and auth.UserStore on DynamoDB.
type DynamoRepository struct {
	client dynamodbiface.DynamoDBAPI
	table  string
	now    func() time.Time
}

func NewDynamoRepository(client dynamodbiface.DynamoDBAPI, table string) *DynamoRepository {
	return &DynamoRepository{client: client, table: table, now: time.Now}
}

func keyAttrs(pk, sk string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		attrPK: {S: aws.String(pk)},
		attrSK: {S: aws.String(sk)},
	}
}

// itemOf marshals v and adds the key and entity attributes.
func itemOf(v interface{}, pk, sk, entity string) (map[string]*dynamodb.AttributeValue, error) {
	item, err := dynamodbattribute.MarshalMap(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", entity, err)
	}
	item[attrPK] = &dynamodb.AttributeValue{S: aws.String(pk)}
	item[attrSK] = &dynamodb.AttributeValue{S: aws.String(sk)}
	item[attrType] = &dynamodb.AttributeValue{S: aws.String(entity)}
	return item, nil
}

func isConditionFailed(err error) bool {
	var aerr awserr.Error
	return errors.As(err, &aerr) && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException
}

func isTransactionConflict(err error) bool {
	var tce *dynamodb.TransactionCanceledException
	if !errors.As(err, &tce) {
		return false
	}
	for _, reason := range tce.CancellationReasons {
		if reason != nil && aws.StringValue(reason.Code) == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}

func (r *DynamoRepository) getItem(ctx context.Context, pk, sk string) (map[string]*dynamodb.AttributeValue, error) {
	out, err := r.client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            keyAttrs(pk, sk),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	return out.Item, nil
}

func (r *DynamoRepository) queryPartition(ctx context.Context, pk string) ([]map[string]*dynamodb.AttributeValue, error) {
	var items []map[string]*dynamodb.AttributeValue
	err := r.client.QueryPagesWithContext(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]*string{
			"#pk": aws.String(attrPK),
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":pk": {S: aws.String(pk)},
		},
		ConsistentRead: aws.Bool(true),
	}, func(page *dynamodb.QueryOutput, lastPage bool) bool {
		items = append(items, page.Items...)
		return true
	})
	return items, err
}

// Users

func (r *DynamoRepository) CreateUser(ctx context.Context, user *auth.User) error {
	pk, sk := userKey(user.ID)
	userItem, err := itemOf(user, pk, sk, entityUser)
	if err != nil {
		return err
	}

	guard := func(gpk, gsk string) *dynamodb.TransactWriteItem {
		item := keyAttrs(gpk, gsk)
		item[attrType] = &dynamodb.AttributeValue{S: aws.String(entityGuard)}
		item["user_id"] = &dynamodb.AttributeValue{S: aws.String(user.ID)}
		return &dynamodb.TransactWriteItem{Put: &dynamodb.Put{
			TableName:           aws.String(r.table),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(pk)"),
		}}
	}

	_, err = r.client.TransactWriteItemsWithContext(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []*dynamodb.TransactWriteItem{
			{Put: &dynamodb.Put{
				TableName:           aws.String(r.table),
				Item:                userItem,
				ConditionExpression: aws.String("attribute_not_exists(pk)"),
			}},
			guard(usernameKey(user.Username)),
			guard(emailKey(user.Email)),
		},
	})
	if err != nil {
		if isTransactionConflict(err) {
			return auth.ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *DynamoRepository) GetUserByID(ctx context.Context, id string) (*auth.User, error) {
	pk, sk := userKey(id)
	item, err := r.getItem(ctx, pk, sk)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if item == nil {
		return nil, auth.ErrUserNotFound
	}
	var user auth.User
	if err := dynamodbattribute.UnmarshalMap(item, &user); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &user, nil
}

func (r *DynamoRepository) GetUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	pk, sk := usernameKey(username)
	return r.userByGuard(ctx, pk, sk)
}

func (r *DynamoRepository) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	pk, sk := emailKey(email)
	return r.userByGuard(ctx, pk, sk)
}

func (r *DynamoRepository) userByGuard(ctx context.Context, pk, sk string) (*auth.User, error) {
	item, err := r.getItem(ctx, pk, sk)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if item == nil || item["user_id"] == nil {
		return nil, auth.ErrUserNotFound
	}
	return r.GetUserByID(ctx, aws.StringValue(item["user_id"].S))
}

// Profiles

func (r *DynamoRepository) putProfile(ctx context.Context, p *Profile, condition string) error {
	pk, sk := profileKey(p.UserID)
	item, err := itemOf(p, pk, sk, entityProfile)
	if err != nil {
		return err
	}
	_, err = r.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String(condition),
	})
	return err
}

func (r *DynamoRepository) CreateProfile(ctx context.Context, p *Profile) error {
	err := r.putProfile(ctx, p, "attribute_not_exists(pk)")
	if isConditionFailed(err) {
		return ErrProfileExists
	}
	if err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	return nil
}

func (r *DynamoRepository) UpdateProfile(ctx context.Context, p *Profile) error {
	err := r.putProfile(ctx, p, "attribute_exists(pk)")
	if isConditionFailed(err) {
		return ErrProfileNotFound
	}
	if err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	return nil
}

func (r *DynamoRepository) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	pk, sk := profileKey(userID)
	item, err := r.getItem(ctx, pk, sk)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if item == nil {
		return nil, ErrProfileNotFound
	}
	var p Profile
	if err := dynamodbattribute.UnmarshalMap(item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	return &p, nil
}

// ListProfiles scans the table for profile items. A profile that fails to
// decode is skipped so one bad row cannot hide every candidate.
func (r *DynamoRepository) ListProfiles(ctx context.Context, excludeUserID string) ([]*Profile, error) {
	var profiles []*Profile
	err := r.client.ScanPagesWithContext(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.table),
		FilterExpression: aws.String("#entity = :entity"),
		ExpressionAttributeNames: map[string]*string{
			"#entity": aws.String(attrType),
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":entity": {S: aws.String(entityProfile)},
		},
	}, func(page *dynamodb.ScanOutput, lastPage bool) bool {
		for _, item := range page.Items {
			var p Profile
			if err := dynamodbattribute.UnmarshalMap(item, &p); err != nil {
				continue
			}
			if p.UserID == "" || p.UserID == excludeUserID {
				continue
			}
			profiles = append(profiles, &p)
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("scan profiles: %w", err)
	}

	sort.Slice(profiles, func(i, j int) bool { return profiles[i].UserID < profiles[j].UserID })
	return profiles, nil
}

// Swipes

func (r *DynamoRepository) swipes(ctx context.Context, swiperID string) ([]*Swipe, error) {
	pk, _ := swipeKeyOf(swiperID, "")
	items, err := r.queryPartition(ctx, pk)
	if err != nil {
		return nil, fmt.Errorf("query swipes: %w", err)
	}

	swipes := make([]*Swipe, 0, len(items))
	for _, item := range items {
		var s Swipe
		if err := dynamodbattribute.UnmarshalMap(item, &s); err != nil {
			return nil, fmt.Errorf("unmarshal swipe: %w", err)
		}
		swipes = append(swipes, &s)
	}
	return swipes, nil
}

func (r *DynamoRepository) ListSwipedIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	swipes, err := r.swipes(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(swipes))
	for _, s := range swipes {
		ids[s.SwipedID] = struct{}{}
	}
	return ids, nil
}

func (r *DynamoRepository) ListSwipes(ctx context.Context, swiperID string) ([]*Swipe, error) {
	swipes, err := r.swipes(ctx, swiperID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(swipes, func(i, j int) bool { return swipes[i].CreatedAt.Before(swipes[j].CreatedAt) })
	return swipes, nil
}

func (r *DynamoRepository) GetSwipe(ctx context.Context, swiperID, swipedID string) (*Swipe, error) {
	pk, sk := swipeKeyOf(swiperID, swipedID)
	item, err := r.getItem(ctx, pk, sk)
	if err != nil {
		return nil, fmt.Errorf("get swipe: %w", err)
	}
	if item == nil {
		return nil, ErrSwipeNotFound
	}
	var s Swipe
	if err := dynamodbattribute.UnmarshalMap(item, &s); err != nil {
		return nil, fmt.Errorf("unmarshal swipe: %w", err)
	}
	return &s, nil
}

func (r *DynamoRepository) HasSwipe(ctx context.Context, swiperID, swipedID string, action SwipeAction) (bool, error) {
	s, err := r.GetSwipe(ctx, swiperID, swipedID)
	if errors.Is(err, ErrSwipeNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.Action == action, nil
}

func (r *DynamoRepository) AppendSwipe(ctx context.Context, s *Swipe) (bool, error) {
	pk, sk := swipeKeyOf(s.SwiperID, s.SwipedID)
	item, err := itemOf(s, pk, sk, entitySwipe)
	if err != nil {
		return false, err
	}

	_, err = r.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(pk)"),
	})
	if isConditionFailed(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("put swipe: %w", err)
	}
	return true, nil
}

// Matches

// CreateMatch writes the match item plus one membership item per side in a
// single transaction so ListMatches can query by user.
func (r *DynamoRepository) CreateMatch(ctx context.Context, userA, userB string) (*Match, bool, error) {
	u1, u2 := canonicalPair(userA, userB)
	match := &Match{
		ID:        uuid.NewString(),
		User1ID:   u1,
		User2ID:   u2,
		CreatedAt: r.now().UTC(),
	}

	put := func(pk, sk, entity, condition string) (*dynamodb.TransactWriteItem, error) {
		item, err := itemOf(match, pk, sk, entity)
		if err != nil {
			return nil, err
		}
		p := &dynamodb.Put{TableName: aws.String(r.table), Item: item}
		if condition != "" {
			p.ConditionExpression = aws.String(condition)
		}
		return &dynamodb.TransactWriteItem{Put: p}, nil
	}

	mpk, msk := matchKey(u1, u2)
	matchPut, err := put(mpk, msk, entityMatch, "attribute_not_exists(pk)")
	if err != nil {
		return nil, false, err
	}
	pk1, sk1 := userMatchKey(u1, u1, u2)
	side1, err := put(pk1, sk1, entityUserMatch, "")
	if err != nil {
		return nil, false, err
	}
	pk2, sk2 := userMatchKey(u2, u1, u2)
	side2, err := put(pk2, sk2, entityUserMatch, "")
	if err != nil {
		return nil, false, err
	}

	_, err = r.client.TransactWriteItemsWithContext(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []*dynamodb.TransactWriteItem{matchPut, side1, side2},
	})
	if err == nil {
		return match, true, nil
	}
	if !isTransactionConflict(err) {
		return nil, false, fmt.Errorf("put match: %w", err)
	}

	item, err := r.getItem(ctx, mpk, msk)
	if err != nil {
		return nil, false, fmt.Errorf("get match: %w", err)
	}
	var existing Match
	if err := dynamodbattribute.UnmarshalMap(item, &existing); err != nil {
		return nil, false, fmt.Errorf("unmarshal match: %w", err)
	}
	return &existing, false, nil
}

func (r *DynamoRepository) ListMatches(ctx context.Context, userID string) ([]*Match, error) {
	pk, _ := userMatchKey(userID, "", "")
	items, err := r.queryPartition(ctx, pk)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}

	matches := make([]*Match, 0, len(items))
	for _, item := range items {
		var m Match
		if err := dynamodbattribute.UnmarshalMap(item, &m); err != nil {
			return nil, fmt.Errorf("unmarshal match: %w", err)
		}
		matches = append(matches, &m)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })
	return matches, nil
}
