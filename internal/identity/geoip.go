package identity

import (
	"net"
	"sync"

	"github.com/oschwald/geoip2-golang"
	"github.com/rs/zerolog/log"
)

// GeoIPService resolves IP addresses to country codes for log enrichment.
// When no database is configured the service stays disabled and every lookup
// returns the unknown marker.
type GeoIPService struct {
	reader *geoip2.Reader
	mu     sync.RWMutex
}

const unknownCountry = "XX"

// NewGeoIPService opens the GeoLite2 database at dbPath. A missing or
// unreadable database is logged and results in a disabled service, not an
// error.
func NewGeoIPService(dbPath string) *GeoIPService {
	if dbPath == "" {
		return &GeoIPService{}
	}

	reader, err := geoip2.Open(dbPath)
	if err != nil {
		log.Warn().
			Err(err).
			Str("path", dbPath).
			Msg("could not load GeoIP database, lookups disabled")
		return &GeoIPService{}
	}

	log.Info().
		Str("path", dbPath).
		Msg("GeoIP database loaded")
	return &GeoIPService{reader: reader}
}

// Country returns the ISO country code for an IP address, or "XX" when the
// service is disabled or the address cannot be resolved.
func (g *GeoIPService) Country(ipAddr string) string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.reader == nil {
		return unknownCountry
	}

	ip := net.ParseIP(ipAddr)
	if ip == nil {
		return unknownCountry
	}

	record, err := g.reader.Country(ip)
	if err != nil {
		log.Error().
			Err(err).
			Str("ip", ipAddr).
			Msg("GeoIP lookup failed")
		return unknownCountry
	}

	if record.Country.IsoCode == "" {
		return unknownCountry
	}
	return record.Country.IsoCode
}

// Close releases the underlying database handle. Lookups racing Close see a
// disabled service instead of a closed handle.
func (g *GeoIPService) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.reader == nil {
		return nil
	}
	reader := g.reader
	g.reader = nil
	return reader.Close()
}
