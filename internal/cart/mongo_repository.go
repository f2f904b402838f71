package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/simbarashe-m/musika/internal/domain"
)

// ConnectMongo dials MongoDB and returns the named database handle.
func ConnectMongo(ctx context.Context, uri, dbName string) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client.Database(dbName), nil
}

type mongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository returns a Repository backed by the "carts" collection.
func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{collection: db.Collection("carts")}
}

// Monetary amounts are persisted as strings: decimal.Decimal has no native
// BSON representation, and strings round-trip without precision loss.
type lineDoc struct {
	ProductID   string `bson:"product_id"`
	ProductName string `bson:"product_name"`
	ShopID      string `bson:"shop_id"`
	ShopName    string `bson:"shop_name"`

	Price    string `bson:"price"`
	Quantity int    `bson:"quantity"`
	InStock  bool   `bson:"in_stock"`

	DeliveryFeeLocal       *string `bson:"delivery_fee_local,omitempty"`
	DeliveryFeeUptown      *string `bson:"delivery_fee_uptown,omitempty"`
	DeliveryFeeOutOfTown   *string `bson:"delivery_fee_outoftown,omitempty"`
	DeliveryFeeCountrywide *string `bson:"delivery_fee_countrywide,omitempty"`
	RunnerFee              *string `bson:"runner_fee,omitempty"`
	TransportFee           *string `bson:"transport_fee,omitempty"`
	FreeDeliveryThreshold  *string `bson:"free_delivery_threshold,omitempty"`

	AddedAt time.Time `bson:"added_at"`
}

type cartDoc struct {
	BuyerID     string    `bson:"buyer_id"`
	Items       []lineDoc `bson:"items"`
	TotalItems  int       `bson:"total_items"`
	TotalAmount string    `bson:"total_amount"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (m *mongoRepository) Get(ctx context.Context, buyerID string) (*domain.Cart, error) {
	var doc cartDoc

	filter := bson.M{"buyer_id": buyerID}
	err := m.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return docToCart(&doc)
}

func (m *mongoRepository) Upsert(ctx context.Context, cart *domain.Cart) error {
	now := time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now

	filter := bson.M{"buyer_id": cart.BuyerID}
	update := bson.M{"$set": cartToDoc(cart)}
	opts := options.Update().SetUpsert(true)

	if _, err := m.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}
	return nil
}

func (m *mongoRepository) Delete(ctx context.Context, buyerID string) error {
	filter := bson.M{"buyer_id": buyerID}
	if _, err := m.collection.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

func cartToDoc(cart *domain.Cart) *cartDoc {
	doc := &cartDoc{
		BuyerID:     cart.BuyerID,
		Items:       make([]lineDoc, 0, len(cart.Items)),
		TotalItems:  cart.TotalItems,
		TotalAmount: cart.TotalAmount.String(),
		CreatedAt:   cart.CreatedAt,
		UpdatedAt:   cart.UpdatedAt,
	}
	for _, line := range cart.Items {
		doc.Items = append(doc.Items, lineDoc{
			ProductID:              line.ProductID.String(),
			ProductName:            line.ProductName,
			ShopID:                 line.ShopID.String(),
			ShopName:               line.ShopName,
			Price:                  line.Price.String(),
			Quantity:               line.Quantity,
			InStock:                line.InStock,
			DeliveryFeeLocal:       amountString(line.DeliveryFeeLocal),
			DeliveryFeeUptown:      amountString(line.DeliveryFeeUptown),
			DeliveryFeeOutOfTown:   amountString(line.DeliveryFeeOutOfTown),
			DeliveryFeeCountrywide: amountString(line.DeliveryFeeCountrywide),
			RunnerFee:              amountString(line.RunnerFee),
			TransportFee:           amountString(line.TransportFee),
			FreeDeliveryThreshold:  amountString(line.FreeDeliveryThreshold),
			AddedAt:                line.AddedAt,
		})
	}
	return doc
}

func docToCart(doc *cartDoc) (*domain.Cart, error) {
	cart := &domain.Cart{
		BuyerID:   doc.BuyerID,
		Items:     make([]domain.CartLine, 0, len(doc.Items)),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}

	for _, item := range doc.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("bad product id %q in stored cart: %w", item.ProductID, err)
		}
		shopID, err := uuid.Parse(item.ShopID)
		if err != nil {
			return nil, fmt.Errorf("bad shop id %q in stored cart: %w", item.ShopID, err)
		}
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			return nil, fmt.Errorf("bad price %q in stored cart: %w", item.Price, err)
		}

		cart.Items = append(cart.Items, domain.CartLine{
			ProductID:              productID,
			ProductName:            item.ProductName,
			ShopID:                 shopID,
			ShopName:               item.ShopName,
			Price:                  price,
			Quantity:               item.Quantity,
			InStock:                item.InStock,
			DeliveryFeeLocal:       parseAmount(item.DeliveryFeeLocal),
			DeliveryFeeUptown:      parseAmount(item.DeliveryFeeUptown),
			DeliveryFeeOutOfTown:   parseAmount(item.DeliveryFeeOutOfTown),
			DeliveryFeeCountrywide: parseAmount(item.DeliveryFeeCountrywide),
			RunnerFee:              parseAmount(item.RunnerFee),
			TransportFee:           parseAmount(item.TransportFee),
			FreeDeliveryThreshold:  parseAmount(item.FreeDeliveryThreshold),
			AddedAt:                item.AddedAt,
		})
	}

	// Stored totals are advisory; rebuild from lines so a stale document
	// cannot leak inconsistent totals into checkout.
	cart.RecalcTotals()
	return cart, nil
}

func amountString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

// parseAmount tolerates malformed stored amounts by treating them as absent
// rather than poisoning the whole cart.
func parseAmount(s *string) *decimal.Decimal {
	if s == nil {
		return nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil
	}
	return &d
}
