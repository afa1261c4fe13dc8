package config

import (
	"context"
	"fmt"

	"gopkg.in/ini.v1"
)

// StorageProfile holds object-storage credentials for an export sink.
type StorageProfile struct {
	Name            string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Prefix          string
	UseSSL          bool
}

type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, profile string) (StorageProfile, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

// NewRegistry loads storage profiles from an INI file, one section per
// profile:
//
//	[default]
//	endpoint = play.min.io
//	region = ap-south-1
//	access_key_id = ...
//	secret_access_key = ...
//	bucket = agri-exports
func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage profiles: %w", err)
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetProfile(_ context.Context, profile string) (StorageProfile, error) {
	section, err := cr.cfg.GetSection(profile)
	if err != nil || len(section.Keys()) == 0 {
		return StorageProfile{}, fmt.Errorf("profile %s not found", profile)
	}

	return StorageProfile{
		Name:            profile,
		Endpoint:        section.Key("endpoint").String(),
		Region:          section.Key("region").String(),
		AccessKeyID:     section.Key("access_key_id").String(),
		SecretAccessKey: section.Key("secret_access_key").String(),
		Bucket:          section.Key("bucket").String(),
		Prefix:          section.Key("prefix").String(),
		UseSSL:          section.Key("use_ssl").MustBool(true),
	}, nil
}
