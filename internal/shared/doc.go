// Package shared holds code used across drillsheet packages that belongs
// to no single layer.
//
// The testutil subpackage provides:
//
//   - workbook fixtures for the stepped-discharge, constant-discharge and
//     daily report templates, built in memory with excelize
//   - a buffered slog handler for asserting on log output
//
// Nothing here may import business packages.
package shared
