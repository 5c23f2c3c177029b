// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package smbios

import (
	"regexp"
	"slices"
	"strings"
)

// Manufacturer is a board vendor.
type Manufacturer int

const (
	ManufacturerUnknown Manufacturer = iota
	ManufacturerAbit
	ManufacturerAcer
	ManufacturerAlienware
	ManufacturerAMD
	ManufacturerAOpen
	ManufacturerApple
	ManufacturerASRock
	ManufacturerASUS
	ManufacturerBiostar
	ManufacturerClevo
	ManufacturerDell
	ManufacturerDFI
	ManufacturerECS
	ManufacturerEPoX
	ManufacturerEVGA
	ManufacturerFIC
	ManufacturerFoxconn
	ManufacturerFujitsu
	ManufacturerGateway
	ManufacturerGigabyte
	ManufacturerHP
	ManufacturerIBM
	ManufacturerIntel
	ManufacturerJetway
	ManufacturerLenovo
	ManufacturerMedion
	ManufacturerMicrosoft
	ManufacturerMSI
	ManufacturerNEC
	ManufacturerPegatron
	ManufacturerSamsung
	ManufacturerSapphire
	ManufacturerShuttle
	ManufacturerSony
	ManufacturerSupermicro
	ManufacturerToshiba
	ManufacturerXFX
	ManufacturerZotac
)

var manufacturerNames = [...]string{
	ManufacturerUnknown:    "Unknown",
	ManufacturerAbit:       "Abit",
	ManufacturerAcer:       "Acer",
	ManufacturerAlienware:  "Alienware",
	ManufacturerAMD:        "AMD",
	ManufacturerAOpen:      "AOpen",
	ManufacturerApple:      "Apple",
	ManufacturerASRock:     "ASRock",
	ManufacturerASUS:       "ASUS",
	ManufacturerBiostar:    "Biostar",
	ManufacturerClevo:      "Clevo",
	ManufacturerDell:       "Dell",
	ManufacturerDFI:        "DFI",
	ManufacturerECS:        "ECS",
	ManufacturerEPoX:       "EPoX",
	ManufacturerEVGA:       "EVGA",
	ManufacturerFIC:        "FIC",
	ManufacturerFoxconn:    "Foxconn",
	ManufacturerFujitsu:    "Fujitsu",
	ManufacturerGateway:    "Gateway",
	ManufacturerGigabyte:   "Gigabyte",
	ManufacturerHP:         "HP",
	ManufacturerIBM:        "IBM",
	ManufacturerIntel:      "Intel",
	ManufacturerJetway:     "Jetway",
	ManufacturerLenovo:     "Lenovo",
	ManufacturerMedion:     "Medion",
	ManufacturerMicrosoft:  "Microsoft",
	ManufacturerMSI:        "MSI",
	ManufacturerNEC:        "NEC",
	ManufacturerPegatron:   "Pegatron",
	ManufacturerSamsung:    "Samsung",
	ManufacturerSapphire:   "Sapphire",
	ManufacturerShuttle:    "Shuttle",
	ManufacturerSony:       "Sony",
	ManufacturerSupermicro: "Supermicro",
	ManufacturerToshiba:    "Toshiba",
	ManufacturerXFX:        "XFX",
	ManufacturerZotac:      "Zotac",
}

func (m Manufacturer) String() string {
	if m < 0 || int(m) >= len(manufacturerNames) {
		return manufacturerNames[ManufacturerUnknown]
	}
	return manufacturerNames[m]
}

// manufacturerPatterns is checked in order; the first case-insensitive
// match wins. Patterns of three letters or fewer must match a whole
// word so "ecs" does not hit "specs".
var manufacturerPatterns = []struct {
	substring    string
	manufacturer Manufacturer
}{
	{"abit.com.tw", ManufacturerAbit},
	{"acer", ManufacturerAcer},
	{"alienware", ManufacturerAlienware},
	{"advanced micro devices", ManufacturerAMD},
	{"aopen", ManufacturerAOpen},
	{"apple", ManufacturerApple},
	{"asrock", ManufacturerASRock},
	{"asustek", ManufacturerASUS},
	{"asus", ManufacturerASUS},
	{"biostar", ManufacturerBiostar},
	{"clevo", ManufacturerClevo},
	{"dell", ManufacturerDell},
	{"dfi", ManufacturerDFI},
	{"ecs", ManufacturerECS},
	{"elitegroup", ManufacturerECS},
	{"epox", ManufacturerEPoX},
	{"evga", ManufacturerEVGA},
	{"first international computer", ManufacturerFIC},
	{"foxconn", ManufacturerFoxconn},
	{"fujitsu", ManufacturerFujitsu},
	{"gateway", ManufacturerGateway},
	{"gigabyte", ManufacturerGigabyte},
	{"hewlett-packard", ManufacturerHP},
	{"hp", ManufacturerHP},
	{"ibm", ManufacturerIBM},
	{"intel", ManufacturerIntel},
	{"jetway", ManufacturerJetway},
	{"lenovo", ManufacturerLenovo},
	{"medion", ManufacturerMedion},
	{"microsoft", ManufacturerMicrosoft},
	{"micro-star", ManufacturerMSI},
	{"msi", ManufacturerMSI},
	{"nec", ManufacturerNEC},
	{"pegatron", ManufacturerPegatron},
	{"samsung", ManufacturerSamsung},
	{"sapphire", ManufacturerSapphire},
	{"shuttle", ManufacturerShuttle},
	{"sony", ManufacturerSony},
	{"supermicro", ManufacturerSupermicro},
	{"toshiba", ManufacturerToshiba},
	{"xfx", ManufacturerXFX},
	{"zotac", ManufacturerZotac},
}

// IdentifyManufacturer classifies a DMI vendor string.
func IdentifyManufacturer(name string) Manufacturer {
	lower := strings.ToLower(name)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})
	for _, pattern := range manufacturerPatterns {
		if len(pattern.substring) > 3 {
			if strings.Contains(lower, pattern.substring) {
				return pattern.manufacturer
			}
			continue
		}
		if slices.Contains(words, pattern.substring) {
			return pattern.manufacturer
		}
	}
	return ManufacturerUnknown
}

// Model is a normalized board product token, e.g.
// "B850_TOMAHAWK_MAX_WIFI". The empty Model is unknown.
type Model string

// ModelUnknown is the zero Model.
const ModelUnknown Model = ""

var (
	parenthetical = regexp.MustCompile(`\([^)]*\)`)
	nonAlnum      = regexp.MustCompile(`[^A-Z0-9]+`)
	msiSeries     = regexp.MustCompile(`^(MAG|MPG|MEG)_`)
	msiPro        = regexp.MustCompile(`^PRO_([A-Z0-9]+)_([A-Z])_(.+)$`)
)

// IdentifyModel normalizes a DMI product string into a Model token:
// the board's own name in upper case with separators collapsed to
// underscores, parenthesized suffixes (MSI's "(MS-7E62)") removed,
// MSI series prefixes dropped, and MSI "PRO <chipset>-<variant>"
// names reordered to "<chipset><variant>_PRO".
//
//	"MAG B850 TOMAHAWK MAX WIFI (MS-7E62)" -> B850_TOMAHAWK_MAX_WIFI
//	"PRO B840-P WIFI (MS-7E57)"            -> B840P_PRO_WIFI
//	"X570 AORUS MASTER"                    -> X570_AORUS_MASTER
func IdentifyModel(product string) Model {
	normalized := strings.ToUpper(parenthetical.ReplaceAllString(product, ""))
	normalized = strings.Trim(nonAlnum.ReplaceAllString(normalized, "_"), "_")
	if normalized == "" || normalized == "DEFAULT_STRING" || normalized == "TO_BE_FILLED_BY_O_E_M" {
		return ModelUnknown
	}
	normalized = msiSeries.ReplaceAllString(normalized, "")
	if match := msiPro.FindStringSubmatch(normalized); match != nil {
		normalized = match[1] + match[2] + "_PRO_" + match[3]
	}
	return Model(normalized)
}
