// Command wmsctl runs maintenance tasks against the wmsadmin database:
// seeding users, applying migrations and importing files without the UI.
package main

func main() {
	Execute()
}
