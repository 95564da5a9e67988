package mongostore

import (
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/adfharrison1/bookreport/pkg/domain"
)

// filterToBSON renders a filter as a query document. Conditions on the same
// field are merged into one operator document, in first-seen order; a lone
// equality is written as a plain value.
func filterToBSON(f domain.Filter) bson.D {
	out := bson.D{}
	byField := make(map[string][]domain.Condition)
	var order []string
	for _, c := range f {
		if _, seen := byField[c.Field]; !seen {
			order = append(order, c.Field)
		}
		byField[c.Field] = append(byField[c.Field], c)
	}

	for _, field := range order {
		conds := byField[field]
		if len(conds) == 1 && conds[0].Op == domain.OpEq {
			out = append(out, bson.E{Key: field, Value: toBSONValue(field, conds[0].Value)})
			continue
		}
		ops := make(bson.D, 0, len(conds))
		for _, c := range conds {
			ops = append(ops, bson.E{Key: string(c.Op), Value: toBSONValue(field, c.Value)})
		}
		out = append(out, bson.E{Key: field, Value: ops})
	}
	return out
}

// toBSONValue turns hex identity strings back into ObjectIDs so that IDs
// read from the store can be queried again
func toBSONValue(field string, v interface{}) interface{} {
	if field != domain.IDField {
		return v
	}
	if s, ok := v.(string); ok {
		if oid, err := bson.ObjectIDFromHex(s); err == nil {
			return oid
		}
	}
	return v
}

func sortToBSON(keys []domain.SortKey) bson.D {
	out := make(bson.D, 0, len(keys))
	for _, k := range keys {
		out = append(out, bson.E{Key: k.Field, Value: int(k.Order)})
	}
	return out
}

// projectionToBSON returns nil for a projection that keeps whole documents
func projectionToBSON(p *domain.Projection) bson.D {
	if p.IsZero() {
		return nil
	}
	out := make(bson.D, 0, len(p.Include)+1)
	for _, f := range p.Include {
		out = append(out, bson.E{Key: f, Value: 1})
	}
	if p.ExcludeID {
		out = append(out, bson.E{Key: domain.IDField, Value: 0})
	}
	return out
}

func indexKeysToBSON(m domain.IndexModel) bson.D {
	out := make(bson.D, 0, len(m.Keys))
	for _, k := range m.Keys {
		out = append(out, bson.E{Key: k.Field, Value: int(k.Order)})
	}
	return out
}

// pipelineToBSON translates typed stages into aggregation stages. A bucketed
// group key becomes {$floor: {$divide: ["$field", width]}}, and a computed
// projection {$multiply: ["$field", factor]}, so the decade report reads
// $multiply[$floor[$divide[year, 10]], 10] end to end.
func pipelineToBSON(p domain.Pipeline) (mongo.Pipeline, error) {
	out := make(mongo.Pipeline, 0, len(p))
	for i, stage := range p {
		var doc bson.D
		switch s := stage.(type) {
		case domain.GroupStage:
			doc = bson.D{{Key: "$group", Value: groupToBSON(s)}}
		case domain.SortStage:
			doc = bson.D{{Key: "$sort", Value: sortToBSON(s.Keys)}}
		case domain.LimitStage:
			doc = bson.D{{Key: "$limit", Value: s.N}}
		case domain.ProjectStage:
			doc = bson.D{{Key: "$project", Value: projectStageToBSON(s)}}
		default:
			return nil, fmt.Errorf("%w: stage %d: unsupported stage %T", domain.ErrInvalidPipeline, i, stage)
		}
		out = append(out, doc)
	}
	return out, nil
}

func fieldRef(field string) string {
	return "$" + field
}

func groupToBSON(s domain.GroupStage) bson.D {
	var key interface{} = fieldRef(s.By.Field)
	if s.By.Bucket > 0 {
		key = bson.D{{Key: "$floor", Value: bson.D{{Key: "$divide", Value: bson.A{fieldRef(s.By.Field), s.By.Bucket}}}}}
	}
	out := bson.D{{Key: domain.IDField, Value: key}}
	for _, acc := range s.Accumulators {
		var expr bson.D
		switch acc.Op {
		case domain.AccAvg:
			expr = bson.D{{Key: "$avg", Value: fieldRef(acc.Field)}}
		case domain.AccSum:
			expr = bson.D{{Key: "$sum", Value: fieldRef(acc.Field)}}
		case domain.AccCount:
			expr = bson.D{{Key: "$sum", Value: 1}}
		}
		out = append(out, bson.E{Key: acc.Name, Value: expr})
	}
	return out
}

func projectStageToBSON(s domain.ProjectStage) bson.D {
	out := make(bson.D, 0, len(s.Fields)+len(s.Computed)+1)
	for _, f := range s.Fields {
		out = append(out, bson.E{Key: f, Value: 1})
	}
	for _, c := range s.Computed {
		out = append(out, bson.E{Key: c.Name, Value: bson.D{{Key: "$multiply", Value: bson.A{fieldRef(c.Field), c.Factor}}}})
	}
	if s.ExcludeID {
		out = append(out, bson.E{Key: domain.IDField, Value: 0})
	}
	return out
}

// fromBSON converts a decoded result into a domain document. ObjectIDs
// become their hex form and nested documents become plain maps.
func fromBSON(m bson.M) domain.Document {
	doc := make(domain.Document, len(m))
	for k, v := range m {
		doc[k] = fromBSONValue(v)
	}
	return doc
}

func fromBSONValue(v interface{}) interface{} {
	switch val := v.(type) {
	case bson.ObjectID:
		return val.Hex()
	case bson.M:
		return map[string]interface{}(fromBSON(val))
	case bson.D:
		out := make(map[string]interface{}, len(val))
		for _, e := range val {
			out[e.Key] = fromBSONValue(e.Value)
		}
		return out
	case bson.A:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = fromBSONValue(item)
		}
		return out
	case int32:
		return int64(val)
	default:
		return v
	}
}

// toBSONDocument copies a domain document for insertion, restoring
// ObjectIDs from hex identity strings
func toBSONDocument(doc domain.Document) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		out[k] = toBSONValue(k, v)
	}
	return out
}

func idString(id interface{}) string {
	if oid, ok := id.(bson.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprintf("%v", id)
}
