package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"cargosur/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoCRTRepo struct {
	DB *mongo.Client
}

func NewMongoCRTRepo(db *mongo.Client) *MongoCRTRepo {
	return &MongoCRTRepo{DB: db}
}

func (r *MongoCRTRepo) db() *mongo.Database {
	return r.DB.Database(mongoDatabase)
}

// CreateCRT inserts the note with its expense ledger embedded
func (r *MongoCRTRepo) CreateCRT(crt *models.CRT) error {
	ctx := context.Background()
	if crt.CreatedAt.IsZero() {
		crt.CreatedAt = time.Now().UTC()
	}
	if crt.ID == 0 {
		crt.ID = time.Now().UnixNano()
	}
	_, err := r.db().Collection("crt").InsertOne(ctx, crt)
	return err
}

// GetCRT fetches notes by filter map; single=true fetches one record
func (r *MongoCRTRepo) GetCRT(filters map[string]interface{}, single bool) ([]*models.CRT, error) {
	ctx := context.Background()

	bsonFilter := bson.M{}
	for k, v := range filters {
		switch k {
		case "id":
			bsonFilter["_id"] = v
		case "q":
			bsonFilter["numero_crt"] = primitive.Regex{
				Pattern: regexp.QuoteMeta(fmt.Sprintf("%v", v)),
				Options: "i",
			}
		default:
			bsonFilter[k] = v
		}
	}

	var out []*models.CRT
	if single {
		var c models.CRT
		err := r.db().Collection("crt").FindOne(ctx, bsonFilter).Decode(&c)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return []*models.CRT{}, nil
			}
			return nil, err
		}
		out = append(out, &c)
	} else {
		cur, err := r.db().Collection("crt").Find(ctx, bsonFilter,
			options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}))
		if err != nil {
			return nil, err
		}
		defer cur.Close(ctx)
		for cur.Next(ctx) {
			var c models.CRT
			if err := cur.Decode(&c); err != nil {
				return nil, err
			}
			out = append(out, &c)
		}
		if err := cur.Err(); err != nil {
			return nil, err
		}
	}

	for _, c := range out {
		r.populatePartes(ctx, c)
	}
	return out, nil
}

// populatePartes loads the referenced party documents, best effort
func (r *MongoCRTRepo) populatePartes(ctx context.Context, c *models.CRT) {
	lookup := func(id *int64) *models.Parte {
		if id == nil || *id == 0 {
			return nil
		}
		var p models.Parte
		if err := r.db().Collection("partes").FindOne(ctx, bson.M{"_id": *id}).Decode(&p); err != nil {
			return nil
		}
		return &p
	}
	c.Remitente = lookup(c.RemitenteID)
	c.Destinatario = lookup(c.DestinatarioID)
	c.Consignatario = lookup(c.ConsignatarioID)
	c.NotificarA = lookup(c.NotificarAID)
	c.Transportadora = lookup(c.TransportadoraID)
}

func (r *MongoCRTRepo) UpdateCRT(crt *models.CRT) error {
	ctx := context.Background()
	now := time.Now().UTC()
	crt.UpdatedAt = &now

	res, err := r.db().Collection("crt").ReplaceOne(ctx, bson.M{"_id": crt.ID}, crt)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *MongoCRTRepo) NextNumber(transportadoraID int64) (string, error) {
	ctx := context.Background()

	parte, err := r.GetParte(transportadoraID)
	if err != nil {
		return "", err
	}
	if parte == nil {
		return "", errors.New("transportadora not found")
	}
	codigo := parte.Codigo
	if codigo == "" {
		codigo = "CRT"
	}

	n, err := r.db().Collection("crt").CountDocuments(ctx, bson.M{"transportadora_id": transportadoraID})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%05d", codigo, n+1), nil
}

func (r *MongoCRTRepo) CreateParte(p *models.Parte) error {
	ctx := context.Background()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.ID == 0 {
		p.ID = time.Now().UnixNano()
	}
	_, err := r.db().Collection("partes").InsertOne(ctx, p)
	return err
}

func (r *MongoCRTRepo) GetParte(id int64) (*models.Parte, error) {
	ctx := context.Background()
	var p models.Parte
	err := r.db().Collection("partes").FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *MongoCRTRepo) ListPartes() ([]*models.Parte, error) {
	ctx := context.Background()
	cur, err := r.db().Collection("partes").Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "nombre", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Parte
	for cur.Next(ctx) {
		var p models.Parte
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, cur.Err()
}
