package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Site is the presentation configuration read from the site YAML file:
// branding, chart palette, outbound links and landing page copy.
type Site struct {
	Name        string `yaml:"name" validate:"required"`
	Tagline     string `yaml:"tagline"`
	Title       string `yaml:"title" validate:"required"`
	Description string `yaml:"description"`

	Brand       Brand    `yaml:"brand"`
	ChartColors []string `yaml:"chart_colors" validate:"min=1,dive,hexcolor"`

	ExplorerBaseURL string `yaml:"explorer_base_url" validate:"required,http_url"`
	Links           Links  `yaml:"links"`

	Highlights []string `yaml:"highlights"`
	Features   []Item   `yaml:"features" validate:"dive"`
	FAQ        []FAQ    `yaml:"faq" validate:"dive"`
	Footer     string   `yaml:"footer"`
	StatsNote  string   `yaml:"stats_note"`
}

// Brand holds the colours used across pages and charts.
type Brand struct {
	Primary   string `yaml:"primary" validate:"required,hexcolor"`
	Secondary string `yaml:"secondary" validate:"required,hexcolor"`
	Success   string `yaml:"success" validate:"required,hexcolor"`
	Warning   string `yaml:"warning" validate:"required,hexcolor"`
}

// Links are the outbound destinations of the site.
type Links struct {
	WhatsApp      string `yaml:"whatsapp" validate:"required,http_url"`
	WhatsAppGroup string `yaml:"whatsapp_group" validate:"omitempty,http_url"`
	Twitter       string `yaml:"twitter" validate:"omitempty,http_url"`
}

// Item is a titled paragraph on the landing page.
type Item struct {
	Title       string `yaml:"title" validate:"required"`
	Description string `yaml:"description"`
}

// FAQ is one question and answer.
type FAQ struct {
	Question string `yaml:"question" validate:"required"`
	Answer   string `yaml:"answer" validate:"required"`
}

// DefaultSite returns the built-in site configuration.
func DefaultSite() *Site {
	return &Site{
		Name:        "ZEND",
		Tagline:     "Just ZEND it.",
		Title:       "ZEND - Secure Payments Right Inside WhatsApp",
		Description: "ZEND is the easiest way for vendors and buyers in Nigeria to send, receive, and protect payments, all without leaving WhatsApp.",
		Brand: Brand{
			Primary:   "#7930C8",
			Secondary: "#0D011F",
			Success:   "#25D366",
			Warning:   "#FFA500",
		},
		ChartColors: []string{
			"#7930C8", "#9B59D0", "#B87FD8", "#D4A5E0",
			"#25D366", "#FFA500", "#FF6B6B", "#4ECDC4",
		},
		ExplorerBaseURL: "https://stellar.expert/explorer/public/tx",
		Links: Links{
			WhatsApp:      "https://wa.me/2349018124230?text=Hi%20Zend!",
			WhatsAppGroup: "https://chat.whatsapp.com/GJ2HOqbJ0YG2OiSdtWnc8d?mode=ems_copy_t",
			Twitter:       "https://x.com/ZendIt_Official",
		},
		Highlights: []string{
			"Escrow keeps money safe",
			"No switching apps",
			"Biometric confirmations",
			"Stable coin transfers",
		},
		Features: []Item{
			{Title: "Instant & Escrow Payments", Description: "Buyers pay securely. Vendors get paid only when delivery is confirmed."},
			{Title: "Group Payments", Description: "Offer discounts when a target number of people join a purchase."},
			{Title: "Help Me Pay", Description: "Share a payment link and let friends chip in until it's fully paid."},
			{Title: "Vendor Subscriptions", Description: "Set up recurring billing for digital goods, classes, or services."},
			{Title: "AI Money Assistant", Description: "Chat with your money inside WhatsApp. Track spending. Get smart tips."},
			{Title: "Powered by Stable Coin", Description: "Fast, stable payments using a dollar-pegged stable coin."},
		},
		FAQ: []FAQ{
			{Question: "Is this safe?", Answer: "Yes. All payments are backed by biometric authentication and smart contract escrow."},
			{Question: "Do I need to install an app?", Answer: "No app needed. Everything works inside WhatsApp with a smart AI bot."},
			{Question: "What does it cost?", Answer: "Sending money to other ZEND users is free. Small fees apply for vendor sales and external transfers."},
			{Question: "What currency does ZEND use?", Answer: "All payments are powered by a dollar-pegged stable coin."},
		},
		Footer:    "ZEND. All rights reserved.",
		StatsNote: "All user identities are anonymized for privacy. Transaction data is updated in real-time.",
	}
}

var siteValidator = validator.New(validator.WithRequiredStructEnabled())

// ParseSite decodes a site document over the defaults and validates the
// result. Keys absent from the document keep their default value.
func ParseSite(data []byte) (*Site, error) {
	site := DefaultSite()
	if err := yaml.Unmarshal(data, site); err != nil {
		return nil, fmt.Errorf("parse site: %w", err)
	}
	site.ExplorerBaseURL = strings.TrimRight(site.ExplorerBaseURL, "/")

	if err := site.Validate(); err != nil {
		return nil, err
	}
	return site, nil
}

// LoadSite reads the site file at path. A missing file yields the defaults.
func LoadSite(path string) (*Site, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSite(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read site file: %w", err)
	}
	return ParseSite(data)
}

// Validate reports the first invalid fields of the site configuration.
func (s *Site) Validate() error {
	err := siteValidator.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate site: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid site: %s", strings.Join(msgs, "; "))
}
