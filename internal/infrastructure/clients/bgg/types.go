package bgg

import "encoding/xml"

// Wire types for the upstream XML API. Parsed at this boundary only so a
// malformed payload is classified once as a parsing error instead of
// leaking optional-field access into callers.

type attrValue struct {
	Value string `xml:"value,attr"`
}

type attrIntValue struct {
	Value int `xml:"value,attr"`
}

type attrFloatValue struct {
	Value float64 `xml:"value,attr"`
}

type searchEnvelope struct {
	XMLName xml.Name     `xml:"items"`
	Total   int          `xml:"total,attr"`
	Items   []searchItem `xml:"item"`
}

type searchItem struct {
	ID            int          `xml:"id,attr"`
	Type          string       `xml:"type,attr"`
	Name          attrValue    `xml:"name"`
	YearPublished attrIntValue `xml:"yearpublished"`
}

type thingEnvelope struct {
	XMLName xml.Name    `xml:"items"`
	Items   []thingItem `xml:"item"`
}

type thingItem struct {
	ID            int          `xml:"id,attr"`
	Type          string       `xml:"type,attr"`
	Names         []thingName  `xml:"name"`
	Description   string       `xml:"description"`
	YearPublished attrIntValue `xml:"yearpublished"`
	MinPlayers    attrIntValue `xml:"minplayers"`
	MaxPlayers    attrIntValue `xml:"maxplayers"`
	PlayingTime   attrIntValue `xml:"playingtime"`
	MinAge        attrIntValue `xml:"minage"`
	Links         []thingLink  `xml:"link"`
	Statistics    *thingStats  `xml:"statistics"`
}

type thingName struct {
	Type  string `xml:"type,attr"`
	Value string `xml:"value,attr"`
}

type thingLink struct {
	Type  string `xml:"type,attr"`
	ID    int    `xml:"id,attr"`
	Value string `xml:"value,attr"`
}

type thingStats struct {
	Ratings thingRatings `xml:"ratings"`
}

type thingRatings struct {
	Average    attrFloatValue `xml:"average"`
	UsersRated attrIntValue   `xml:"usersrated"`
}

// primaryName returns the primary name of the item, falling back to the
// first name present.
func (t *thingItem) primaryName() string {
	for _, n := range t.Names {
		if n.Type == "primary" {
			return n.Value
		}
	}
	if len(t.Names) > 0 {
		return t.Names[0].Value
	}
	return ""
}
