package common

// GlusterdService is the name of the gluster management daemon service unit.
const GlusterdService = "glusterd"
