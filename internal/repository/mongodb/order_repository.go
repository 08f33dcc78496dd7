package mongodb

import (
	"context"
	"errors"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/legnamegusta-ctrl/apporgania/internal/domain/models"
)

// Items every checklist of a production order is made of. Progress is always
// derived from this fixed set, ignoring stray keys left by older writers.
var checklistItems = map[string][]string{
	models.ChecklistProduction: {"ordemGerada", "impressaoEtiqueta", "amostra", "contraprova", "ordemCompleta"},
	models.ChecklistSale:       {"pedidoPreenchido", "pedidoAgendado", "emissaoNotaFiscal", "pedidoPronto"},
}

// OrderRepository defines access to production orders and their checklists.
type OrderRepository interface {
	ListByStatus(ctx context.Context, status models.OrderStatus) ([]models.ProductionOrder, error)
	Get(ctx context.Context, id string) (*models.ProductionOrder, error)
	UpdateChecklistItem(ctx context.Context, orderID, checklistName, itemName string, checked bool) (*models.ProductionOrder, error)
}

// MongoOrderRepository implements OrderRepository against the
// production_orders collection.
type MongoOrderRepository struct {
	store *Store
}

// NewOrderRepository wires an order repository instance.
func NewOrderRepository(store *Store) *MongoOrderRepository {
	return &MongoOrderRepository{store: store}
}

// ListByStatus returns all orders in the given status, newest first.
func (r *MongoOrderRepository) ListByStatus(ctx context.Context, status models.OrderStatus) ([]models.ProductionOrder, error) {
	filter := bson.M{"status": string(status)}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cur, err := r.store.database().Collection(collOrders).Find(ctx, filter, opts)
	if err != nil {
		return nil, models.NewFetchError("orders by status", err)
	}
	defer cur.Close(ctx)

	orders := make([]models.ProductionOrder, 0)
	if err := cur.All(ctx, &orders); err != nil {
		return nil, models.NewFetchError("decode orders", err)
	}
	return orders, nil
}

// Get performs a point read of a single order.
func (r *MongoOrderRepository) Get(ctx context.Context, id string) (*models.ProductionOrder, error) {
	var order models.ProductionOrder
	err := r.store.database().Collection(collOrders).FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, models.NewFetchError("order by id", err)
	}
	return &order, nil
}

// UpdateChecklistItem flips one checklist item inside a transaction: the
// order is re-read, the item and derived progress are recomputed, and the
// order status is conditionally rewritten. Completion requires both
// checklists at 100%.
func (r *MongoOrderRepository) UpdateChecklistItem(ctx context.Context, orderID, checklistName, itemName string, checked bool) (*models.ProductionOrder, error) {
	items, ok := checklistItems[checklistName]
	if !ok {
		return nil, &models.ValidationError{Field: "checklist", Reason: "unknown checklist " + checklistName}
	}
	if !contains(items, itemName) {
		return nil, &models.ValidationError{Field: "item", Reason: "unknown checklist item " + itemName}
	}

	session, err := r.store.Client().StartSession()
	if err != nil {
		return nil, models.NewFetchError("start session", err)
	}
	defer session.EndSession(ctx)

	coll := r.store.database().Collection(collOrders)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var order models.ProductionOrder
		if err := coll.FindOne(sc, bson.M{"_id": orderID}).Decode(&order); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, models.ErrNotFound
			}
			return nil, err
		}

		if order.Checklists == nil {
			order.Checklists = make(map[string]models.Checklist)
		}

		checklist := order.Checklists[checklistName]
		if checklist.Items == nil {
			checklist.Items = make(map[string]bool)
		}
		checklist.Items[itemName] = checked
		checklist.Progress = checklistProgress(checklist.Items, items)
		order.Checklists[checklistName] = checklist

		order.Status = models.OrderInProgress
		if order.Checklists[models.ChecklistProduction].Done() && order.Checklists[models.ChecklistSale].Done() {
			order.Status = models.OrderCompleted
		}
		order.UpdatedAt = time.Now().UTC()

		update := bson.M{"$set": bson.M{
			"checklists": order.Checklists,
			"status":     string(order.Status),
			"updated_at": order.UpdatedAt,
		}}
		if _, err := coll.UpdateByID(sc, orderID, update); err != nil {
			return nil, err
		}

		return &order, nil
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, models.NewFetchError("update checklist", err)
	}

	return result.(*models.ProductionOrder), nil
}

func checklistProgress(state map[string]bool, items []string) int {
	if len(items) == 0 {
		return 0
	}
	done := 0
	for _, item := range items {
		if state[item] {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(items)) * 100))
}

func contains(items []string, name string) bool {
	for _, item := range items {
		if item == name {
			return true
		}
	}
	return false
}
