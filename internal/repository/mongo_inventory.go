package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/atinyakov/GophStore/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// itemDoc is the document shape shared by the master and placement
// collections. Placements carry the date fields.
type itemDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Barcode     string             `bson:"codigo"`
	RCT         string             `bson:"rct"`
	ListPrice   float64            `bson:"precoTabela"`
	PromoPrice  float64            `bson:"precoPromocao"`
	BalanceQty  *int               `bson:"saldo"`
	Location    string             `bson:"localizacao"`
	AddedAt     time.Time          `bson:"dataAdicao,omitempty"`
	RelocatedAt *time.Time         `bson:"dataAtualizacao,omitempty"`
}

func newItemDoc(it models.InventoryItem) itemDoc {
	return itemDoc{
		Barcode:    it.Barcode,
		RCT:        it.RCT,
		ListPrice:  it.ListPrice,
		PromoPrice: it.PromoPrice,
		BalanceQty: it.BalanceQty,
		Location:   it.Location,
	}
}

func newPlacementDoc(pl models.Placement) itemDoc {
	d := newItemDoc(pl.InventoryItem)
	d.AddedAt = pl.AddedAt
	d.RelocatedAt = pl.RelocatedAt
	return d
}

func (d itemDoc) item() models.InventoryItem {
	var id string
	if !d.ID.IsZero() {
		id = d.ID.Hex()
	}
	return models.InventoryItem{
		ID:         id,
		Barcode:    d.Barcode,
		RCT:        d.RCT,
		ListPrice:  d.ListPrice,
		PromoPrice: d.PromoPrice,
		BalanceQty: d.BalanceQty,
		Location:   d.Location,
	}
}

func (d itemDoc) placement() models.Placement {
	return models.Placement{InventoryItem: d.item(), AddedAt: d.AddedAt, RelocatedAt: d.RelocatedAt}
}

func (g *MongoGateway) findItem(ctx context.Context, filter bson.M) (*models.InventoryItem, error) {
	var d itemDoc
	if err := g.db.Collection(itemsCollection).FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, notFound(err)
	}
	it := d.item()
	return &it, nil
}

func (g *MongoGateway) FindItemByBarcode(ctx context.Context, barcode string) (*models.InventoryItem, error) {
	return g.findItem(ctx, bson.M{"codigo": barcode})
}

func (g *MongoGateway) FindItemByRCT(ctx context.Context, rct string) (*models.InventoryItem, error) {
	return g.findItem(ctx, bson.M{"rct": rct})
}

func (g *MongoGateway) ListItems(ctx context.Context) ([]models.InventoryItem, error) {
	cur, err := g.db.Collection(itemsCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("ListItems: %w", err)
	}
	var docs []itemDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode inventory: %w", err)
	}
	items := make([]models.InventoryItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.item())
	}
	return items, nil
}

func (g *MongoGateway) findPlacements(ctx context.Context, filter bson.M) ([]models.Placement, error) {
	cur, err := g.db.Collection(placementsCollection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find placements: %w", err)
	}
	var docs []itemDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode placements: %w", err)
	}
	placements := make([]models.Placement, 0, len(docs))
	for _, d := range docs {
		placements = append(placements, d.placement())
	}
	return placements, nil
}

func (g *MongoGateway) ListPlacements(ctx context.Context) ([]models.Placement, error) {
	return g.findPlacements(ctx, bson.M{})
}

func (g *MongoGateway) ListPlacementsByLocation(ctx context.Context, location string) ([]models.Placement, error) {
	return g.findPlacements(ctx, bson.M{"localizacao": location})
}

func (g *MongoGateway) ListPlacementsByBarcode(ctx context.Context, barcode string) ([]models.Placement, error) {
	return g.findPlacements(ctx, bson.M{"codigo": barcode})
}

func (g *MongoGateway) AddPlacement(ctx context.Context, pl models.Placement) (string, error) {
	d := newPlacementDoc(pl)
	d.ID = primitive.NewObjectID()
	if _, err := g.db.Collection(placementsCollection).InsertOne(ctx, d); err != nil {
		return "", fmt.Errorf("AddPlacement: %w", err)
	}
	return d.ID.Hex(), nil
}

// ReplaceShelf deletes the shelf's placements and inserts the new list.
// The list is fully resolved by the caller before anything is deleted.
func (g *MongoGateway) ReplaceShelf(ctx context.Context, location string, placements []models.Placement) error {
	docs := make([]any, 0, len(placements))
	for i := range placements {
		d := newPlacementDoc(placements[i])
		d.ID = primitive.NewObjectID()
		d.Location = location
		placements[i].ID = d.ID.Hex()
		placements[i].Location = location
		docs = append(docs, d)
	}

	coll := g.db.Collection(placementsCollection)
	if _, err := coll.DeleteMany(ctx, bson.M{"localizacao": location}); err != nil {
		return fmt.Errorf("clear shelf: %w", err)
	}
	if len(docs) == 0 {
		return nil
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert placements: %w", err)
	}
	return nil
}

func (g *MongoGateway) DeletePlacement(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := g.db.Collection(placementsCollection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("DeletePlacement: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (g *MongoGateway) RelocatePlacement(ctx context.Context, id, location string, at time.Time) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := g.db.Collection(placementsCollection).UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{"localizacao": location, "dataAtualizacao": at},
	})
	if err != nil {
		return fmt.Errorf("RelocatePlacement: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
