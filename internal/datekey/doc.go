// Package datekey orders the date tokens found in LiveInternet tables.
//
// Weekly tables label rows with a day and a month abbreviation ("16 дек"),
// monthly tables with a month and an optional two or four digit year
// ("Мар 23", "дек 2024", "декабрь"). None of them is a full date, so every
// token is mapped to a Key that compares in calendar order within one batch.
//
// Weekly keys are anchored to ReferenceYear. A weekly batch that crosses New
// Year therefore sorts January before December of the previous year; this is
// known and kept.
package datekey
