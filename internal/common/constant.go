// Package common contains shared constants, sentinel errors and the typed
// request errors used across the library server.
package common

// ServerErrorMessage is the only detail a client receives for an internal
// failure. The underlying error is logged server-side.
const ServerErrorMessage = "server error - contact support"

// Messages shared between the service layer and the HTTP layer.
const (
	MsgMissingRequiredInfo = "Missing required information"
	MsgInvalidCredentials  = "Invalid Credentials"
	MsgInvalidPassword     = "Invalid or missing password - please refer to documentation"
	MsgInvalidPhone        = "Invalid or missing phone number - please refer to documentation"
	MsgInvalidEmail        = "Invalid or missing email - please refer to documentation"
	MsgInvalidRole         = "Invalid or missing role - please refer to documentation"
	MsgUsernameExists      = "Username exists"
	MsgEmailExists         = "Email exists"

	MsgInvalidISBN         = "Invalid or missing ISBN - please refer to documentation"
	MsgInvalidTitle        = "Invalid or missing title - please refer to documentation"
	MsgInvalidAuthors      = "Invalid or missing authors - please refer to documentation"
	MsgInvalidAuthor       = "Invalid or missing author - please refer to documentation"
	MsgInvalidYear         = "Invalid or missing publication year - please refer to documentation"
	MsgInvalidRatingAvg    = "Invalid or missing rating average - please refer to documentation"
	MsgISBNExists          = "ISBN/isbn13 already exists"
	MsgTitleExists         = "Title already exists"
	MsgBookTitleNotFound   = "Book title not found"
	MsgRatingCountRequired = "At least one rating count must be provided"
	MsgRatingCountsInvalid = "Rating counts must be non-negative integers"
)
