package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"cargosur/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoMICRepo struct {
	DB *mongo.Client
}

func NewMongoMICRepo(db *mongo.Client) *MongoMICRepo {
	return &MongoMICRepo{DB: db}
}

func (r *MongoMICRepo) db() *mongo.Database {
	return r.DB.Database(mongoDatabase)
}

func (r *MongoMICRepo) CreateMIC(m *models.MIC) error {
	ctx := context.Background()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.Estado == "" {
		m.Estado = models.EstadoProvisorio
	}
	if m.ID == 0 {
		m.ID = time.Now().UnixNano()
	}
	_, err := r.db().Collection("mic").InsertOne(ctx, m)
	return err
}

func (r *MongoMICRepo) GetMICByID(id int64) (*models.MIC, error) {
	ctx := context.Background()
	var m models.MIC
	err := r.db().Collection("mic").FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	r.populateCRT(ctx, &m)
	return &m, nil
}

// populateCRT fills the join columns from the originating CRT, best
// effort
func (r *MongoMICRepo) populateCRT(ctx context.Context, m *models.MIC) {
	if m.CRTID == nil || *m.CRTID == 0 {
		return
	}
	var c models.CRT
	if err := r.db().Collection("crt").FindOne(ctx, bson.M{"_id": *m.CRTID}).Decode(&c); err != nil {
		return
	}
	m.CrtNumero = c.NumeroCRT
	m.CrtFechaEmision = c.FechaEmision
	m.CrtEstado = c.Estado
}

func contiene(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func buildMICFilter(f models.FiltrosMIC) bson.M {
	filter := bson.M{}
	if f.Estado != "" {
		filter["estado"] = string(f.Estado)
	}
	if f.NumeroCarta != "" {
		filter["campo_23_numero_campo2_crt"] = contiene(f.NumeroCarta)
	}
	if f.Transportadora != "" {
		filter["campo_1_transporte"] = contiene(f.Transportadora)
	}
	if f.Placa != "" {
		filter["campo_11_placa"] = contiene(f.Placa)
	}
	if f.Destino != "" {
		filter["campo_8_destino"] = contiene(f.Destino)
	}
	fecha := bson.M{}
	if f.FechaDesde != "" {
		fecha["$gte"] = f.FechaDesde
	}
	if f.FechaHasta != "" {
		fecha["$lte"] = f.FechaHasta
	}
	if len(fecha) > 0 {
		filter["campo_6_fecha"] = fecha
	}
	if f.Busqueda != "" {
		filter["$or"] = bson.A{
			bson.M{"campo_23_numero_campo2_crt": contiene(f.Busqueda)},
			bson.M{"campo_1_transporte": contiene(f.Busqueda)},
			bson.M{"campo_38_datos_campo11_crt": contiene(f.Busqueda)},
		}
	}
	return filter
}

func (r *MongoMICRepo) ListMICs(f models.FiltrosMIC, page, perPage int) ([]*models.MIC, int, error) {
	ctx := context.Background()
	filter := buildMICFilter(f)

	total, err := r.db().Collection("mic").CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))

	cur, err := r.db().Collection("mic").Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []*models.MIC
	for cur.Next(ctx) {
		var m models.MIC
		if err := cur.Decode(&m); err != nil {
			return nil, 0, err
		}
		r.populateCRT(ctx, &m)
		out = append(out, &m)
	}
	return out, int(total), cur.Err()
}

func (r *MongoMICRepo) UpdateMIC(m *models.MIC) error {
	ctx := context.Background()
	now := time.Now().UTC()
	m.UpdatedAt = &now

	res, err := r.db().Collection("mic").ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *MongoMICRepo) Stats() (*models.MICStats, error) {
	ctx := context.Background()
	col := r.db().Collection("mic")
	s := &models.MICStats{}

	total, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	s.TotalMICs = int(total)

	now := time.Now().UTC()
	hoy := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	nHoy, err := col.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": hoy}})
	if err != nil {
		return nil, err
	}
	s.MICsHoy = int(nHoy)

	// week starts on Monday
	offset := (int(now.Weekday()) + 6) % 7
	semana := hoy.AddDate(0, 0, -offset)
	nSemana, err := col.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": semana}})
	if err != nil {
		return nil, err
	}
	s.MICsSemana = int(nSemana)

	cur, err := col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$estado", "cantidad": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			Estado   string `bson:"_id"`
			Cantidad int    `bson:"cantidad"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		s.PorEstado = append(s.PorEstado, models.ConteoEstado{
			Estado:   models.Estado(row.Estado),
			Cantidad: row.Cantidad,
		})
	}
	return s, cur.Err()
}
