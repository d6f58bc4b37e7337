/*
Package config describes networks DegenToken is deployed to and operated in.

Configuration is a YAML document:

	default_network: testnet
	networks:
	  testnet:
	    rpc: https://testnet1.neo.coz.io:443
	    magic: 894710606
	    extra_network_fee: 100000
	    explorer: https://dora.coz.io/transaction/neo3/testnet/
	    contract: ${DEGEN_CONTRACT_ADDRESS}
	    wallet:
	      path: ./wallet.json
	      password: ${DEGEN_WALLET_PASSWORD}

${VAR} and $VAR references are replaced with environment variables before
parsing. Networks from the file override built-in ones with the same name.
*/
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"gopkg.in/yaml.v3"
)

// Built-in network names.
const (
	PrivNet = "privnet"
	TestNet = "testnet"
	MainNet = "mainnet"
)

// ErrUnknownNetwork is returned for networks missing in the configuration.
var ErrUnknownNetwork = errors.New("unknown network")

// Config is a set of named network profiles.
type Config struct {
	DefaultNetwork string             `yaml:"default_network"`
	Networks       map[string]Network `yaml:"networks"`
}

// Network is a single network profile.
type Network struct {
	// RPC is a Neo node RPC endpoint.
	RPC string `yaml:"rpc"`
	// Magic is an expected network magic, zero disables the check.
	Magic uint32 `yaml:"magic"`
	// ExtraNetworkFee is added to network fee of every transaction, in GAS
	// fractions.
	ExtraNetworkFee int64 `yaml:"extra_network_fee"`
	// Explorer is a transaction URL prefix used to print links.
	Explorer string `yaml:"explorer"`
	// Contract is an address of deployed DegenToken contract.
	Contract string `yaml:"contract"`
	Wallet   Wallet `yaml:"wallet"`
}

// Wallet points to the signing account.
type Wallet struct {
	Path     string `yaml:"path"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
}

// Default returns built-in configuration.
func Default() Config {
	return Config{
		DefaultNetwork: PrivNet,
		Networks: map[string]Network{
			PrivNet: {
				RPC:   "http://localhost:30333",
				Magic: 56753,
			},
			TestNet: {
				RPC:      "https://testnet1.neo.coz.io:443",
				Magic:    894710606,
				Explorer: "https://dora.coz.io/transaction/neo3/testnet/",
			},
			MainNet: {
				RPC:      "https://mainnet1.neo.coz.io:443",
				Magic:    860833102,
				Explorer: "https://dora.coz.io/transaction/neo3/mainnet/",
			},
		},
	}
}

// Load reads configuration from the file. Empty path means built-in
// configuration.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}

	return c, nil
}

// Parse decodes YAML configuration expanding environment variables and
// merging it with the built-in one.
func Parse(data []byte) (Config, error) {
	var (
		c    = Default()
		file Config
	)

	err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &file)
	if err != nil {
		return Config{}, fmt.Errorf("decode YAML: %w", err)
	}

	if file.DefaultNetwork != "" {
		c.DefaultNetwork = file.DefaultNetwork
	}
	for name, n := range file.Networks {
		c.Networks[name] = n
	}

	err = c.Validate()
	if err != nil {
		return Config{}, err
	}

	return c, nil
}

// Validate checks configuration consistency.
func (c Config) Validate() error {
	if _, ok := c.Networks[c.DefaultNetwork]; !ok {
		return fmt.Errorf("default network %q: %w", c.DefaultNetwork, ErrUnknownNetwork)
	}

	for name, n := range c.Networks {
		if n.RPC == "" {
			return fmt.Errorf("network %q: empty RPC endpoint", name)
		}
		if n.ExtraNetworkFee < 0 {
			return fmt.Errorf("network %q: negative extra network fee %d", name, n.ExtraNetworkFee)
		}
		if n.Contract != "" {
			if _, err := ParseAccount(n.Contract); err != nil {
				return fmt.Errorf("network %q: contract: %w", name, err)
			}
		}
	}

	return nil
}

// Network returns profile by name, empty name selects the default network.
func (c Config) Network(name string) (Network, error) {
	if name == "" {
		name = c.DefaultNetwork
	}

	n, ok := c.Networks[name]
	if !ok {
		return Network{}, fmt.Errorf("%w: %q", ErrUnknownNetwork, name)
	}

	return n, nil
}

// ContractHash returns script hash of the configured contract. The second
// value is false if no contract is configured.
func (n Network) ContractHash() (util.Uint160, bool, error) {
	if n.Contract == "" {
		return util.Uint160{}, false, nil
	}

	h, err := ParseAccount(n.Contract)
	if err != nil {
		return util.Uint160{}, false, err
	}

	return h, true, nil
}

// TxLink returns explorer link to the transaction or empty string if no
// explorer is configured.
func (n Network) TxLink(h util.Uint256) string {
	if n.Explorer == "" {
		return ""
	}
	return n.Explorer + "0x" + h.StringLE()
}

// ParseAccount parses Neo address, LE hex-encoded script hash or BE one
// with 0x prefix.
func ParseAccount(s string) (util.Uint160, error) {
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		h, err := util.Uint160DecodeStringBE(s[2:])
		if err != nil {
			return util.Uint160{}, fmt.Errorf("invalid script hash %q: %w", s, err)
		}
		return h, nil
	}

	if len(s) == 2*util.Uint160Size {
		h, err := util.Uint160DecodeStringLE(s)
		if err == nil {
			return h, nil
		}
	}

	if raw, err := base58.Decode(s); err != nil || len(raw) == 0 {
		return util.Uint160{}, fmt.Errorf("invalid account %q", s)
	}

	h, err := address.StringToUint160(s)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("invalid address %q: %w", s, err)
	}

	return h, nil
}
