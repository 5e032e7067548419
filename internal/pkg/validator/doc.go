// Package validator wraps go-playground/validator with English messages keyed
// by json field names.
package validator
