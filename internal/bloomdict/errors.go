package bloomdict

import "errors"

// ErrSnapshot indicates a dictionary snapshot could not be read or decoded.
var ErrSnapshot = errors.New("malformed bloom dictionary snapshot")

// ErrArtifactRef indicates a remote artifact reference is not well-formed.
var ErrArtifactRef = errors.New("invalid artifact reference")
