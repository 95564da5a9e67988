package domain

// Book field names as stored in the books collection
const (
	FieldTitle         = "title"
	FieldAuthor        = "author"
	FieldGenre         = "genre"
	FieldPublishedYear = "published_year"
	FieldPrice         = "price"
	FieldInStock       = "in_stock"
	FieldPages         = "pages"
	FieldPublisher     = "publisher"
)

// Book is the typed view of a document in the books collection
type Book struct {
	ID            string  `json:"_id,omitempty"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Genre         string  `json:"genre"`
	PublishedYear int     `json:"published_year"`
	Price         float64 `json:"price"`
	InStock       bool    `json:"in_stock"`
	Pages         int     `json:"pages,omitempty"`
	Publisher     string  `json:"publisher,omitempty"`
}

// ToDocument converts the book into a store document. The identity field is
// only set when the book already has one.
func (b Book) ToDocument() Document {
	doc := Document{
		FieldTitle:         b.Title,
		FieldAuthor:        b.Author,
		FieldGenre:         b.Genre,
		FieldPublishedYear: b.PublishedYear,
		FieldPrice:         b.Price,
		FieldInStock:       b.InStock,
	}
	if b.Pages > 0 {
		doc[FieldPages] = b.Pages
	}
	if b.Publisher != "" {
		doc[FieldPublisher] = b.Publisher
	}
	if b.ID != "" {
		doc[IDField] = b.ID
	}
	return doc
}

// BookFromDocument reads a Book out of a document. Missing or mistyped
// fields are left at their zero value.
func BookFromDocument(doc Document) Book {
	b := Book{ID: doc.ID()}
	b.Title, _ = doc[FieldTitle].(string)
	b.Author, _ = doc[FieldAuthor].(string)
	b.Genre, _ = doc[FieldGenre].(string)
	b.Publisher, _ = doc[FieldPublisher].(string)
	b.InStock, _ = doc[FieldInStock].(bool)
	if v, ok := ToFloat64(doc[FieldPublishedYear]); ok {
		b.PublishedYear = int(v)
	}
	if v, ok := ToFloat64(doc[FieldPages]); ok {
		b.Pages = int(v)
	}
	if v, ok := ToFloat64(doc[FieldPrice]); ok {
		b.Price = v
	}
	return b
}

// ToFloat64 converts the numeric types a document may carry to float64
func ToFloat64(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
