// Package mysql provides a MySQL-backed record source.
//
// A Source reads every row of one table per fetch. Table and column names
// become XML element names downstream, so both are validated against a
// conservative identifier alphabet before they reach a query. Values are
// scanned driver-agnostically as nullable strings: numbers, timestamps, and
// text all arrive in their canonical textual form.
package mysql
