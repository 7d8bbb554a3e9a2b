package client

import (
	"bytes"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/coldvault/vault/pkg/envelope"
	"github.com/coldvault/vault/pkg/merkle"
)

// ErrProofInvalid is returned by Pull when the server's claimed top hash
// does not match the locally recomputed fold of the returned proof.
var ErrProofInvalid = envelope.ErrProofInvalid

// ErrNotFound is returned by Pull when the server reports the requested
// name_hash is unbound.
var ErrNotFound = errors.New("client: file not found")

// Client turns plaintext files into Envelopes and back, and calls the
// server's five endpoints. It holds no ambient state beyond what is
// passed into New — no package-level singleton http.Client.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	accountName string
	secret      string // the plaintext password; doubles as the name_hash salt
	keyProvider envelope.KeyProvider
	signingKey  *rsa.PrivateKey

	sessionToken string
}

// New builds a Client for accountName, authenticated with secret, sealing
// bodies under keyProvider and signing them with signingKey.
func New(baseURL, accountName, secret string, keyProvider envelope.KeyProvider, signingKey *rsa.PrivateKey) *Client {
	return &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{},
		accountName: accountName,
		secret:      secret,
		keyProvider: keyProvider,
		signingKey:  signingKey,
	}
}

// Create registers the client's account on the server. The password is
// sent as an Argon2id hash salted by the account name, never in plaintext.
func (c *Client) Create() error {
	resp, err := c.postJSON("/create", map[string]string{"name": c.accountName, "password": envelope.NameHash(c.accountName, c.secret)})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return httpStatusError(resp)
	}
	return nil
}

// Login authenticates the client's account. If the server hands back a
// session token (RequireAuth mode), it is cached for later pushes/pulls.
func (c *Client) Login() error {
	resp, err := c.postJSON("/login", map[string]string{"name": c.accountName, "password": envelope.NameHash(c.accountName, c.secret)})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return httpStatusError(resp)
	}
	c.sessionToken = resp.Header.Get("X-Session-Token")
	return nil
}

// Push encrypts name/body into an Envelope under the client's account and
// uploads it.
func (c *Client) Push(name string, body []byte) error {
	env, err := c.seal(name, body)
	if err != nil {
		return err
	}
	return c.pushEnvelope(env)
}

func (c *Client) pushEnvelope(env envelope.Envelope) error {
	req, err := c.newRequest(http.MethodPost, "/push", env)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: push: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return httpStatusError(resp)
	}
	return nil
}

func (c *Client) seal(name string, body []byte) (envelope.Envelope, error) {
	key, err := c.keyProvider.DeriveKey([]byte(c.secret))
	if err != nil {
		return envelope.Envelope{}, err
	}

	bodyNonce, ciphertext, err := envelope.Seal(body, key)
	if err != nil {
		return envelope.Envelope{}, err
	}
	nameNonce, encName, err := envelope.Seal([]byte(name), key)
	if err != nil {
		return envelope.Envelope{}, err
	}

	sig, err := envelope.Sign(body, []byte(name), c.signingKey)
	if err != nil {
		return envelope.Envelope{}, err
	}

	return envelope.Envelope{
		NameNonce: envelope.ByteArray(nameNonce[:]),
		Name:      envelope.ByteArray(encName),
		NameHash:  envelope.NameHash(c.secret, name),
		Nonce:     envelope.ByteArray(bodyNonce[:]),
		Contents:  envelope.ByteArray(ciphertext),
		Signature: envelope.ByteArray(sig),
	}, nil
}

// Pull downloads and decrypts the file named name, verifying the signature
// and the inclusion proof against the server's claimed top hash.
func (c *Client) Pull(name string) ([]byte, error) {
	env, err := c.fetchByHash(envelope.NameHash(c.secret, name))
	if err != nil {
		return nil, err
	}

	var bodyNonce [envelope.NonceSize]byte
	copy(bodyNonce[:], env.Nonce)
	body, err := envelope.OpenWithProvider(env.Contents, c.keyProvider, c.secret, bodyNonce)
	if err != nil {
		return nil, err
	}
	var nameNonce [envelope.NonceSize]byte
	copy(nameNonce[:], env.NameNonce)
	plainName, err := envelope.OpenWithProvider(env.Name, c.keyProvider, c.secret, nameNonce)
	if err != nil {
		return nil, err
	}

	pub := &c.signingKey.PublicKey
	if err := envelope.Verify(body, plainName, env.Signature, pub); err != nil {
		return nil, err
	}

	return body, nil
}

// fetchByHash downloads the envelope bound to nameHash and checks its
// inclusion proof against the server's claimed top hash, without
// decrypting anything. Pull builds on it once it has derived nameHash from
// a plaintext name; RotateKeyProvider uses it directly, since it already
// has name_hash from a list entry and never needs the plaintext name.
func (c *Client) fetchByHash(nameHash string) (envelope.Envelope, error) {
	req, err := c.newRequest(http.MethodGet, "/pull", map[string]string{"name_hash": nameHash})
	if err != nil {
		return envelope.Envelope{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return envelope.Envelope{}, fmt.Errorf("client: pull: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return envelope.Envelope{}, httpStatusError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return envelope.Envelope{}, fmt.Errorf("client: pull: reading response: %w", err)
	}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return envelope.Envelope{}, ErrNotFound
	}

	// The server sends the two-element array [envelope, proof], not a
	// named object.
	var tuple [2]json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return envelope.Envelope{}, fmt.Errorf("client: pull: decoding response: %w", err)
	}
	var env envelope.Envelope
	if err := json.Unmarshal(tuple[0], &env); err != nil {
		return envelope.Envelope{}, fmt.Errorf("client: pull: decoding envelope: %w", err)
	}
	var proof merkle.Proof
	if err := json.Unmarshal(tuple[1], &proof); err != nil {
		return envelope.Envelope{}, fmt.Errorf("client: pull: decoding proof: %w", err)
	}

	if !proof.Verify(sha256.Sum256(env.Contents)) {
		return envelope.Envelope{}, ErrProofInvalid
	}
	return env, nil
}

// RotateKeyProvider migrates every file the account owns from its current
// key derivation policy to newProvider: each envelope is pulled, re-sealed
// and re-signed under newProvider by envelope.Rekey, then pushed back.
// The account password (c.secret) and therefore every name_hash are
// unchanged, so each push rebinds the same name_hash; the server places
// the re-sealed envelope in a newly allocated slot and the old slot is
// left orphaned. It returns the number of files migrated. A mid-rotation
// failure leaves already-migrated files on the new provider and the rest
// on the old one, and the client keeps its old provider; a second call
// then opens every file with that old provider, so it fails at the first
// already-migrated file unless the old provider is a MultiKeyProvider
// that also covers newProvider.
func (c *Client) RotateKeyProvider(newProvider envelope.KeyProvider) (int, error) {
	_, entries, err := c.List()
	if err != nil {
		return 0, err
	}

	for i, e := range entries {
		env, err := c.fetchByHash(e.NameHash)
		if err != nil {
			return i, fmt.Errorf("client: rotate: fetching %s: %w", e.NameHash, err)
		}
		rekeyed, err := envelope.Rekey(&env, envelope.RekeyOptions{
			OldSecret:      c.secret,
			NewSecret:      c.secret,
			OldKeyProvider: c.keyProvider,
			NewKeyProvider: newProvider,
			SigningKey:     c.signingKey,
		})
		if err != nil {
			return i, fmt.Errorf("client: rotate: rekeying %s: %w", e.NameHash, err)
		}
		if err := c.pushEnvelope(*rekeyed); err != nil {
			return i, fmt.Errorf("client: rotate: pushing %s: %w", e.NameHash, err)
		}
	}

	c.keyProvider = newProvider
	return len(entries), nil
}

// ListEntry mirrors the server's list response shape.
type ListEntry struct {
	NameHash  string             `json:"name_hash"`
	Size      int                `json:"size"`
	Name      envelope.ByteArray `json:"name"`
	Nonce     envelope.ByteArray `json:"nonce"`
	NameNonce envelope.ByteArray `json:"name_nonce"`
}

// List returns the server's current top hash and slot listing.
func (c *Client) List() (merkle.Digest, []ListEntry, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/list", nil)
	if err != nil {
		return merkle.Digest{}, nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return merkle.Digest{}, nil, fmt.Errorf("client: list: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return merkle.Digest{}, nil, httpStatusError(resp)
	}

	var wire struct {
		TopHash merkle.Digest `json:"top_hash"`
		List    []ListEntry   `json:"list"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return merkle.Digest{}, nil, fmt.Errorf("client: list: decoding response: %w", err)
	}
	return wire.TopHash, wire.List, nil
}

func (c *Client) postJSON(path string, body interface{}) (*http.Response, error) {
	req, err := c.newRequest(http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s: %w", path, err)
	}
	return resp, nil
}

func (c *Client) newRequest(method, path string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("client: encoding request for %s: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("client: building URL for %s: %w", path, err)
	}

	req, err := http.NewRequest(method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("client: building request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.sessionToken != "" {
		req.Header.Set("X-Session-Token", c.sessionToken)
	}
	return req, nil
}

func httpStatusError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("client: server returned %s: %s", resp.Status, bytes.TrimSpace(body))
}
