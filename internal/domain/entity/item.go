package entity

import (
	"time"
)

// ItemType is a value object identifying what kind of object a report is
// about. Equality is by Value, never by label or pointer identity.
type ItemType struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Equal reports whether two item types describe the same kind of object.
func (t ItemType) Equal(other ItemType) bool {
	return t.Value == other.Value
}

// ItemTypes is the fixed catalog of reportable object kinds.
var ItemTypes = []ItemType{
	{Value: "carnet", Label: "Carné Estudiantil"},
	{Value: "documento", Label: "Documento de Identidad"},
	{Value: "celular", Label: "Celular"},
	{Value: "portatil", Label: "Computador Portátil"},
	{Value: "audifonos", Label: "Audífonos"},
	{Value: "cable", Label: "Cable o Cargador"},
	{Value: "mochila", Label: "Mochila o Bolso"},
	{Value: "billetera", Label: "Billetera"},
	{Value: "llaves", Label: "Llaves"},
	{Value: "libro", Label: "Libro"},
	{Value: "cuaderno", Label: "Cuaderno o Carpeta"},
	{Value: "ropa", Label: "Ropa o Chaqueta"},
	{Value: "termo", Label: "Termo o Botella"},
	{Value: "gafas", Label: "Gafas"},
	{Value: "sombrilla", Label: "Sombrilla o Paraguas"},
	{Value: "otro", Label: "Otro"},
}

// ItemTypeByValue resolves a catalog entry by its canonical value. Unknown
// values yield an ItemType with an empty label; string equality on Value
// still works for matching, so unrecognized-but-equal values compare equal.
func ItemTypeByValue(value string) ItemType {
	for _, t := range ItemTypes {
		if t.Value == value {
			return t
		}
	}
	return ItemType{Value: value}
}

// Location is a named campus zone.
type Location string

// Campus zone catalog, Ciudad Universitaria.
const (
	LocationBloque1  Location = "Bloque 1 - Fac. Ciencias Exactas y Naturales"
	LocationBloque2  Location = "Bloque 2 - Fac. Ciencias Exactas y Naturales"
	LocationBloque3  Location = "Bloque 3 - Fac. Ciencias Farmacéuticas y Alimentarias"
	LocationBloque4  Location = "Bloque 4 - Fac. Ciencias Exactas y Naturales: Depto. de Matemáticas"
	LocationBloque5  Location = "Bloque 5 - Esc. Microbiología"
	LocationBloque6  Location = "Bloque 6 - Fac. Ciencias Exactas y Naturales: Inst. de Física"
	LocationBloque7  Location = "Bloque 7 - Fac. Ciencias Exactas y Naturales: Inst. de Biología"
	LocationBloque8  Location = "Bloque 8 - Biblioteca Central"
	LocationBloque9  Location = "Bloque 9 - Fac. de Educación"
	LocationBloque10 Location = "Bloque 10 - Auditorios"
	LocationBloque11 Location = "Bloque 11 - Aulas especiales"
	LocationBloque12 Location = "Bloque 12 - Esc. de Idiomas"
	LocationBloque13 Location = "Bloque 13 - Fac. de Comunicaciones y Filología"
	LocationBloque14 Location = "Bloque 14 - Fac. Ciencias Económicas"
	LocationBloque15 Location = "Bloque 15 - Museo Universitario MUUA"
	LocationBloque16 Location = "Bloque 16 - Bloque Administrativo"
	LocationBloque17 Location = "Bloque 17 - Capilla Universitaria"
	LocationBloque18 Location = "Bloque 18 - Fac. de Ingeniería (laboratorios)"
	LocationBloque19 Location = "Bloque 19 - Fac. de Ingeniería"
	LocationBloque20 Location = "Bloque 20 - Fac. de Ingeniería"
	LocationBloque21 Location = "Bloque 21 - Fac. de Ingeniería"
	LocationBloque22 Location = "Bloque 22 - Bienestar Universitario"
	LocationBloque23 Location = "Bloque 23 - Teatro Universitario Camilo Torres"
	LocationBloque24 Location = "Bloque 24 - Fac. de Artes"
	LocationBloque25 Location = "Bloque 25 - Fac. de Artes"
	LocationBloque26 Location = "Bloque 26 - Museo de Artes Visuales"
	LocationBloque27 Location = "Bloque 27 - Depto. Comercial"
	LocationBloque28 Location = "Bloque 28 - Depto. Documentación"
	LocationBloque29 Location = "Bloque 29 - Depto. de Sostenimiento"
	LocationOtro     Location = "Otro"
)

// Locations returns the full campus zone catalog in block order.
func Locations() []Location {
	return []Location{
		LocationBloque1, LocationBloque2, LocationBloque3, LocationBloque4,
		LocationBloque5, LocationBloque6, LocationBloque7, LocationBloque8,
		LocationBloque9, LocationBloque10, LocationBloque11, LocationBloque12,
		LocationBloque13, LocationBloque14, LocationBloque15, LocationBloque16,
		LocationBloque17, LocationBloque18, LocationBloque19, LocationBloque20,
		LocationBloque21, LocationBloque22, LocationBloque23, LocationBloque24,
		LocationBloque25, LocationBloque26, LocationBloque27, LocationBloque28,
		LocationBloque29, LocationOtro,
	}
}

// FoundStatus is the lifecycle state of a found-item report.
type FoundStatus string

const (
	// FoundStatusPending means the object is held and waiting for its owner.
	FoundStatusPending FoundStatus = "pending"
	// FoundStatusMatched means a lost report was confirmed against it.
	FoundStatusMatched FoundStatus = "matched"
	// FoundStatusDelivered means the object was physically handed back.
	FoundStatusDelivered FoundStatus = "delivered"
)

// LostStatus is the lifecycle state of a lost-item report.
type LostStatus string

const (
	// LostStatusSearching is the initial state of every lost report.
	LostStatusSearching LostStatus = "searching"
	// LostStatusMatched means a found report was confirmed against it.
	LostStatusMatched LostStatus = "matched"
	// LostStatusFound means the owner recovered the object on their own.
	LostStatusFound LostStatus = "found"
	// LostStatusClosed means the owner desisted from the search.
	LostStatusClosed LostStatus = "closed"
)

// MatchStatus is the lifecycle state of a lost/found association.
type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusVerified  MatchStatus = "verified"
	MatchStatusCompleted MatchStatus = "completed"
)

// FoundItem is a report of a physical object someone found on campus.
// Status is only ever mutated through the item store or the match
// lifecycle; found reports are never deleted in the normal flow.
type FoundItem struct {
	ID        string
	Type      ItemType
	Location  Location
	FoundDate time.Time
	// Image is an opaque blob reference: either the public URL of the
	// uploaded photo or the raw base64 payload when storage is disabled.
	Image     string
	Status    FoundStatus
	FinderID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LostItem is a report of a physical object its owner is searching for.
// Locations holds between one and two candidate campus zones.
type LostItem struct {
	ID          string
	Type        ItemType
	Locations   []Location
	LostDate    time.Time
	Description string
	ImageURL    string
	Status      LostStatus
	SeekerID    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Match associates one lost report with one found report believed to be
// the same object. Only Status mutates after creation; matches are never
// deleted.
type Match struct {
	ID          string
	LostItemID  string
	FoundItemID string
	Status      MatchStatus
	MatchDate   time.Time
}

// MaxLostItemLocations caps the candidate zones on a lost report. The cap
// is enforced both here and by a CHECK constraint in the schema.
const MaxLostItemLocations = 2

// ValidateLostLocations checks the 1..2 cardinality of a lost report's
// candidate zones.
func ValidateLostLocations(locations []Location) bool {
	return len(locations) >= 1 && len(locations) <= MaxLostItemLocations
}
