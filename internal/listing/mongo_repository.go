// File: internal/listing/mongo_repository.go
package listing

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"estate_backend/internal/common"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const listingsCollection = "listings"

// listingDoc is the stored shape of a Listing. Ids are kept as UUID strings.
type listingDoc struct {
	ID            string    `bson:"_id"`
	Name          string    `bson:"name"`
	Description   string    `bson:"description"`
	Address       string    `bson:"address"`
	RegularPrice  float64   `bson:"regularPrice"`
	DiscountPrice float64   `bson:"discountPrice"`
	Bathrooms     int       `bson:"bathrooms"`
	Bedrooms      int       `bson:"bedrooms"`
	Furnished     bool      `bson:"furnished"`
	Parking       bool      `bson:"parking"`
	Type          string    `bson:"type"`
	Offer         bool      `bson:"offer"`
	ImageURLs     []string  `bson:"imageUrls"`
	UserRef       string    `bson:"userRef"`
	CreatedAt     time.Time `bson:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

func toDoc(l *Listing) listingDoc {
	images := l.ImageURLs
	if images == nil {
		images = []string{}
	}
	return listingDoc{
		ID:            l.ID.String(),
		Name:          l.Name,
		Description:   l.Description,
		Address:       l.Address,
		RegularPrice:  l.RegularPrice,
		DiscountPrice: l.DiscountPrice,
		Bathrooms:     l.Bathrooms,
		Bedrooms:      l.Bedrooms,
		Furnished:     l.Furnished,
		Parking:       l.Parking,
		Type:          string(l.Type),
		Offer:         l.Offer,
		ImageURLs:     images,
		UserRef:       l.UserRef.String(),
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func (d listingDoc) toListing() (Listing, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return Listing{}, fmt.Errorf("listing document has bad _id %q: %w", d.ID, err)
	}
	owner, err := uuid.Parse(d.UserRef)
	if err != nil {
		return Listing{}, fmt.Errorf("listing %s has bad userRef %q: %w", d.ID, d.UserRef, err)
	}
	l := Listing{
		Name:          d.Name,
		Description:   d.Description,
		Address:       d.Address,
		RegularPrice:  d.RegularPrice,
		DiscountPrice: d.DiscountPrice,
		Bathrooms:     d.Bathrooms,
		Bedrooms:      d.Bedrooms,
		Furnished:     d.Furnished,
		Parking:       d.Parking,
		Type:          ListingType(d.Type),
		Offer:         d.Offer,
		ImageURLs:     d.ImageURLs,
		UserRef:       owner,
	}
	l.ID = id
	l.CreatedAt = d.CreatedAt
	l.UpdatedAt = d.UpdatedAt
	return l, nil
}

type mongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository creates a listing repository backed by MongoDB.
func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(listingsCollection)}
}

// EnsureMongoIndexes creates the unique name index and the lookup indexes.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(listingsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userRef", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create listing indexes: %w", err)
	}
	return nil
}

func (r *mongoRepository) Create(ctx context.Context, listing *Listing) error {
	listing.EnsureID(time.Now().UTC())
	if _, err := r.coll.InsertOne(ctx, toDoc(listing)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errDuplicateName
		}
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

func (r *mongoRepository) FindByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	var doc listingDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound.WithMessage("Listing not found!")
		}
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}
	l, err := doc.toListing()
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *mongoRepository) FindByOwner(ctx context.Context, owner uuid.UUID) ([]Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{"userRef": owner.String()}, opts)
}

func (r *mongoRepository) Search(ctx context.Context, q Query) ([]Listing, error) {
	opts := options.Find().
		SetSort(mongoSort(q.Sort)).
		SetSkip(int64(q.Offset)).
		SetLimit(int64(q.Limit))
	return r.find(ctx, mongoFilter(q), opts)
}

func (r *mongoRepository) UpdateOwned(ctx context.Context, id, owner uuid.UUID, patch Patch) (*Listing, error) {
	set := mongoSet(patch)
	set["updatedAt"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc listingDoc
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id.String(), "userRef": owner.String()},
		bson.M{"$set": set},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoOwnedMatch
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, errDuplicateName
		}
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}
	l, err := doc.toListing()
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *mongoRepository) DeleteOwned(ctx context.Context, id, owner uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String(), "userRef": owner.String()})
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNoOwnedMatch
	}
	return nil
}

func (r *mongoRepository) DeleteByOwner(ctx context.Context, owner uuid.UUID) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"userRef": owner.String()})
	if err != nil {
		return 0, fmt.Errorf("failed to delete listings for owner: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *mongoRepository) OwnerIDs(ctx context.Context) ([]uuid.UUID, error) {
	raw, err := r.coll.Distinct(ctx, "userRef", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list listing owners: %w", err)
	}
	owners := make([]uuid.UUID, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if id, err := uuid.Parse(s); err == nil {
			owners = append(owners, id)
		}
	}
	return owners, nil
}

func (r *mongoRepository) FindBatch(ctx context.Context, offset, limit int) ([]Listing, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoRepository) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]Listing, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer cur.Close(ctx)

	var docs []listingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	listings := make([]Listing, 0, len(docs))
	for _, d := range docs {
		l, err := d.toListing()
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// mongoFilter translates q into a find filter. The search term is quoted so it
// matches as a literal substring.
func mongoFilter(q Query) bson.D {
	filter := bson.D{}
	if q.SearchTerm != "" {
		filter = append(filter, bson.E{Key: "name", Value: primitive.Regex{Pattern: regexp.QuoteMeta(q.SearchTerm), Options: "i"}})
	}
	if v, ok := q.Offer.Only(); ok {
		filter = append(filter, bson.E{Key: "offer", Value: v})
	}
	if v, ok := q.Furnished.Only(); ok {
		filter = append(filter, bson.E{Key: "furnished", Value: v})
	}
	if v, ok := q.Parking.Only(); ok {
		filter = append(filter, bson.E{Key: "parking", Value: v})
	}
	if t, ok := q.OnlyType(); ok {
		filter = append(filter, bson.E{Key: "type", Value: string(t)})
	}
	return filter
}

func mongoSort(s SortSpec) bson.D {
	dir := 1
	if s.Descending {
		dir = -1
	}
	field := s.Field
	if _, ok := sortable[field]; !ok {
		field = DefaultSort
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
}

func mongoSet(p Patch) bson.M {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Address != nil {
		set["address"] = *p.Address
	}
	if p.RegularPrice != nil {
		set["regularPrice"] = *p.RegularPrice
	}
	if p.DiscountPrice != nil {
		set["discountPrice"] = *p.DiscountPrice
	}
	if p.Bathrooms != nil {
		set["bathrooms"] = *p.Bathrooms
	}
	if p.Bedrooms != nil {
		set["bedrooms"] = *p.Bedrooms
	}
	if p.Furnished != nil {
		set["furnished"] = *p.Furnished
	}
	if p.Parking != nil {
		set["parking"] = *p.Parking
	}
	if p.Type != nil {
		set["type"] = string(*p.Type)
	}
	if p.Offer != nil {
		set["offer"] = *p.Offer
	}
	if p.ImageURLs != nil {
		set["imageUrls"] = p.ImageURLs
	}
	return set
}
