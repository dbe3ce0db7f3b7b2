package outbox

// topic is the Postgres table-backed topic holding enveloped messages until
// the forwarder moves them to Redis.
const topic = "events_to_forward"
