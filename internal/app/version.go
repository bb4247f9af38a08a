package app

// Service metadata
const ServiceName = "library-service"
const ServiceVersion = "1.0.0"
