package api

// Secteur is a study sector, the reference-data type the console manages.
type Secteur struct {
	ID          int    `json:"id"`
	Nom         string `json:"nom"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// SecteurInput is the create/update payload for a secteur.
type SecteurInput struct {
	Nom         string `json:"nom"`
	Description string `json:"description"`
}

// Secteurs returns the secteur CRUD service.
func (c *Client) Secteurs() *Resource[Secteur, SecteurInput] {
	return NewResource[Secteur, SecteurInput](c, secteursPath)
}
