package api

import "passguard/pkg/breachdir"

type queryRequest struct {
	Password string `json:"password" binding:"required"`
}

type hashRequest struct {
	Hash string `json:"hash" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

type generateRequest struct {
	Length int `json:"length"`
	// Pointer bools so a missing field defaults to true while an
	// explicit false still disables the class.
	Lowercase *bool `json:"lowercase"`
	Uppercase *bool `json:"uppercase"`
	Digits    *bool `json:"digits"`
	Symbols   *bool `json:"symbols"`
}

type passwordStrength struct {
	Score            int      `json:"score"`
	Label            string   `json:"label"`
	Entropy          float64  `json:"entropy"`
	Warnings         []string `json:"warnings"`
	CrackTimeDisplay string   `json:"crackTimeDisplay,omitempty"`
}

type queryResponse struct {
	Pwned    bool              `json:"pwned"`
	Count    int               `json:"count"`
	Strength *passwordStrength `json:"strength,omitempty"`
}

type emailResponse struct {
	Exposed bool              `json:"exposed"`
	Report  *breachdir.Report `json:"report"`
}

type generateResponse struct {
	Password string            `json:"password"`
	Length   int               `json:"length"`
	Strength *passwordStrength `json:"strength"`
}
