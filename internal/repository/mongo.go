package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/atinyakov/GophStore/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	storesCollection     = "stores"
	productsCollection   = "defective_products"
	itemsCollection      = "tabelaTotalDeProdutos"
	placementsCollection = "tabelaProdutos"
)

// MongoGateway implements Gateway against a MongoDB database.
// Document ids are ObjectIDs and travel as their hex form.
type MongoGateway struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoGateway creates a MongoGateway. client may be nil when the caller
// owns the connection.
func NewMongoGateway(client *mongo.Client, db *mongo.Database) *MongoGateway {
	return &MongoGateway{client: client, db: db}
}

func (g *MongoGateway) Name() string { return "mongodb" }

func (g *MongoGateway) Ping(ctx context.Context) error {
	return g.db.Client().Ping(ctx, readpref.Primary())
}

func (g *MongoGateway) Close(ctx context.Context) error {
	if g.client == nil {
		return nil
	}
	return g.client.Disconnect(ctx)
}

type storeDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	PasswordHash string             `bson:"passwordHash"`
}

func (d storeDoc) model() models.Store {
	return models.Store{ID: d.ID.Hex(), Name: d.Name, PasswordHash: d.PasswordHash}
}

type productDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Name             string             `bson:"name"`
	Defect           string             `bson:"defect"`
	RCT              string             `bson:"rct"`
	OriginalPrice    float64            `bson:"originalPrice"`
	PromotionalPrice *float64           `bson:"promotionalPrice"`
	FinalPrice       float64            `bson:"finalPrice"`
	StoreID          bson.RawValue      `bson:"storeId"`
	Image            string             `bson:"image,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt"`
}

func (d productDoc) model() models.Product {
	return models.Product{
		ID:               d.ID.Hex(),
		Name:             d.Name,
		Defect:           d.Defect,
		RCT:              d.RCT,
		OriginalPrice:    d.OriginalPrice,
		PromotionalPrice: d.PromotionalPrice,
		FinalPrice:       d.FinalPrice,
		StoreID:          rawID(d.StoreID),
		Image:            d.Image,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

// productFields is the document written for a product, without its _id.
func productFields(p *models.Product) bson.M {
	return bson.M{
		"name":             p.Name,
		"defect":           p.Defect,
		"rct":              p.RCT,
		"originalPrice":    p.OriginalPrice,
		"promotionalPrice": p.PromotionalPrice,
		"finalPrice":       p.FinalPrice,
		"storeId":          storeRef(p.StoreID),
		"image":            p.Image,
		"createdAt":        p.CreatedAt,
		"updatedAt":        p.UpdatedAt,
	}
}

// rawID renders a stored reference as a canonical string id. Older documents
// hold ObjectIDs, strings or numbers.
func rawID(v bson.RawValue) string {
	switch v.Type {
	case bsontype.ObjectID:
		return v.ObjectID().Hex()
	case bsontype.String:
		return v.StringValue()
	case bsontype.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case bsontype.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case bsontype.Double:
		return strconv.FormatFloat(v.Double(), 'f', -1, 64)
	}
	return ""
}

// storeRef is the stored form of a store id: an ObjectID when it parses as one.
func storeRef(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

// storeFilter matches a store id in either stored form.
func storeFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"storeId": bson.M{"$in": bson.A{oid, id}}}
	}
	return bson.M{"storeId": id}
}

// objectID parses a canonical id. Anything that is not an ObjectID cannot
// name a document and is reported as not found.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, models.ErrNotFound
	}
	return oid, nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ErrNotFound
	}
	return err
}

// Migrate rewrites documents written by older deployments: the snake_case
// store reference is renamed and plaintext store passwords are hashed.
func (g *MongoGateway) Migrate(ctx context.Context, h Hasher) error {
	if _, err := g.db.Collection(productsCollection).UpdateMany(ctx,
		bson.M{"store_id": bson.M{"$exists": true}, "storeId": bson.M{"$exists": false}},
		bson.M{"$rename": bson.M{"store_id": "storeId"}},
	); err != nil {
		return fmt.Errorf("rename store_id: %w", err)
	}

	stores := g.db.Collection(storesCollection)
	cur, err := stores.Find(ctx, bson.M{"password": bson.M{"$exists": true}})
	if err != nil {
		return fmt.Errorf("find plaintext credentials: %w", err)
	}
	var legacy []struct {
		ID       primitive.ObjectID `bson:"_id"`
		Password string             `bson:"password"`
	}
	if err := cur.All(ctx, &legacy); err != nil {
		return fmt.Errorf("decode plaintext credentials: %w", err)
	}

	for _, s := range legacy {
		hash, err := h.Hash(s.Password)
		if err != nil {
			return fmt.Errorf("hash credential: %w", err)
		}
		if _, err := stores.UpdateByID(ctx, s.ID, bson.M{
			"$set":   bson.M{"passwordHash": hash},
			"$unset": bson.M{"password": ""},
		}); err != nil {
			return fmt.Errorf("store hashed credential: %w", err)
		}
	}
	return nil
}

// Seed inserts the default data into empty collections.
func (g *MongoGateway) Seed(ctx context.Context, h Hasher) error {
	n, err := g.db.Collection(storesCollection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("count stores: %w", err)
	}
	if n == 0 {
		if err := g.seedCatalog(ctx, h); err != nil {
			return err
		}
	}

	n, err = g.db.Collection(itemsCollection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("count inventory: %w", err)
	}
	if n > 0 {
		return nil
	}
	docs := make([]any, 0, 8)
	for _, it := range DefaultInventory() {
		docs = append(docs, newItemDoc(it))
	}
	if _, err := g.db.Collection(itemsCollection).InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("seed inventory: %w", err)
	}
	return nil
}

func (g *MongoGateway) seedCatalog(ctx context.Context, h Hasher) error {
	stores, err := DefaultStores(h)
	if err != nil {
		return err
	}
	docs := make([]any, len(stores))
	ids := make([]string, len(stores))
	for i, s := range stores {
		oid := primitive.NewObjectID()
		docs[i] = storeDoc{ID: oid, Name: s.Name, PasswordHash: s.PasswordHash}
		ids[i] = oid.Hex()
	}
	if _, err := g.db.Collection(storesCollection).InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("seed stores: %w", err)
	}

	products := DefaultProducts(ids, time.Now().UTC())
	pdocs := make([]any, len(products))
	for i := range products {
		pdocs[i] = productFields(&products[i])
	}
	if _, err := g.db.Collection(productsCollection).InsertMany(ctx, pdocs); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	return nil
}

func (g *MongoGateway) ListStores(ctx context.Context) ([]models.Store, error) {
	cur, err := g.db.Collection(storesCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("ListStores: %w", err)
	}
	var docs []storeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode stores: %w", err)
	}
	stores := make([]models.Store, 0, len(docs))
	for _, d := range docs {
		stores = append(stores, d.model())
	}
	return stores, nil
}

func (g *MongoGateway) GetStore(ctx context.Context, id string) (*models.Store, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var d storeDoc
	if err := g.db.Collection(storesCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		return nil, notFound(err)
	}
	s := d.model()
	return &s, nil
}

func (g *MongoGateway) findProducts(ctx context.Context, filter bson.M) ([]models.Product, error) {
	cur, err := g.db.Collection(productsCollection).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	products := make([]models.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, d.model())
	}
	return products, nil
}

func (g *MongoGateway) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := g.findProducts(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("ListProducts: %w", err)
	}
	return products, nil
}

func (g *MongoGateway) ListProductsByStore(ctx context.Context, storeID string) ([]models.Product, error) {
	products, err := g.findProducts(ctx, storeFilter(storeID))
	if err != nil {
		return nil, fmt.Errorf("ListProductsByStore: %w", err)
	}
	return products, nil
}

func (g *MongoGateway) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var d productDoc
	if err := g.db.Collection(productsCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		return nil, notFound(err)
	}
	p := d.model()
	return &p, nil
}

func (g *MongoGateway) CreateProduct(ctx context.Context, p *models.Product) error {
	oid := primitive.NewObjectID()
	doc := productFields(p)
	doc["_id"] = oid
	if _, err := g.db.Collection(productsCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("CreateProduct: %w", err)
	}
	p.ID = oid.Hex()
	return nil
}

func (g *MongoGateway) UpdateProduct(ctx context.Context, p *models.Product) error {
	oid, err := objectID(p.ID)
	if err != nil {
		return err
	}
	set := productFields(p)
	delete(set, "storeId")
	delete(set, "createdAt")
	res, err := g.db.Collection(productsCollection).UpdateByID(ctx, oid, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("UpdateProduct: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (g *MongoGateway) DeleteProduct(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := g.db.Collection(productsCollection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("DeleteProduct: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
